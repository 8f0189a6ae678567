package repository

import (
	"context"

	"github.com/hray3182/daybook/internal/database"
	"github.com/hray3182/daybook/internal/models"
)

type ICSImportRepository struct {
	db *database.DB
}

func NewICSImportRepository(db *database.DB) *ICSImportRepository {
	return &ICSImportRepository{db: db}
}

func (r *ICSImportRepository) Create(ctx context.Context, imp *models.ICSImport) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO ics_import (import_id, user_id, source, is_plan, event_count)
		 VALUES ($1::uuid, $2, $3, $4, $5)
		 RETURNING created_at`,
		imp.ImportID, imp.UserID, imp.Source, imp.IsPlan, imp.EventCount,
	).Scan(&imp.CreatedAt)
}

// GetBySource returns the imports of source, newest first.
func (r *ICSImportRepository) GetBySource(ctx context.Context, userID int64, source string) ([]*models.ICSImport, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT import_id::text, user_id, source, is_plan, event_count, created_at
		 FROM ics_import WHERE user_id = $1 AND source = $2
		 ORDER BY created_at DESC`,
		userID, source,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var imports []*models.ICSImport
	for rows.Next() {
		imp := &models.ICSImport{}
		if err := rows.Scan(&imp.ImportID, &imp.UserID, &imp.Source, &imp.IsPlan,
			&imp.EventCount, &imp.CreatedAt); err != nil {
			return nil, err
		}
		imports = append(imports, imp)
	}
	return imports, rows.Err()
}

func (r *ICSImportRepository) Delete(ctx context.Context, importID string, userID int64) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM ics_import WHERE import_id = $1::uuid AND user_id = $2`,
		importID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
