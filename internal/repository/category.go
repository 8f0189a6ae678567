package repository

import (
	"context"

	"github.com/hray3182/daybook/internal/database"
	"github.com/hray3182/daybook/internal/models"
)

type CategoryRepository struct {
	db *database.DB
}

func NewCategoryRepository(db *database.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO category (user_id, name, color) VALUES ($1, $2, $3)
		 RETURNING category_id`,
		category.UserID, category.Name, category.Color,
	).Scan(&category.CategoryID)
}

func (r *CategoryRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Category, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT category_id, user_id, name, color FROM category
		 WHERE user_id = $1 ORDER BY name ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.CategoryID, &c.UserID, &c.Name, &c.Color); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) GetByID(ctx context.Context, categoryID, userID int64) (*models.Category, error) {
	c := &models.Category{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT category_id, user_id, name, color FROM category
		 WHERE category_id = $1 AND user_id = $2`,
		categoryID, userID,
	).Scan(&c.CategoryID, &c.UserID, &c.Name, &c.Color)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE category SET name = $1, color = $2 WHERE category_id = $3 AND user_id = $4`,
		category.Name, category.Color, category.CategoryID, category.UserID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a category. It fails with ErrCategoryInUse while events
// still reference it.
func (r *CategoryRepository) Delete(ctx context.Context, categoryID, userID int64) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM category WHERE category_id = $1 AND user_id = $2`,
		categoryID, userID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrCategoryInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
