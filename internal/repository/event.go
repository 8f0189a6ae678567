package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hray3182/daybook/internal/database"
	"github.com/hray3182/daybook/internal/models"
)

const eventColumns = `e.event_id, e.user_id, e.date::text, e.start_time::text, e.end_time::text,
	e.title, e.description, e.category_id, e.is_plan, e.is_sleep,
	COALESCE(e.import_id::text, ''), e.created_at, e.updated_at`

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

func scanEvent(row pgx.Row, event *models.Event, extra ...any) error {
	dest := []any{
		&event.EventID, &event.UserID, &event.Date, &event.StartTime, &event.EndTime,
		&event.Title, &event.Description, &event.CategoryID, &event.IsPlan, &event.IsSleep,
		&event.ImportID, &event.CreatedAt, &event.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO event (user_id, date, start_time, end_time, title, description,
		 category_id, is_plan, is_sleep, import_id)
		 VALUES ($1, $2::date, $3::time, $4::time, $5, $6, $7, $8, $9, NULLIF($10, '')::uuid)
		 RETURNING event_id, created_at, updated_at`,
		event.UserID, event.Date, event.StartTime, event.EndTime, event.Title, event.Description,
		event.CategoryID, event.IsPlan, event.IsSleep, event.ImportID,
	).Scan(&event.EventID, &event.CreatedAt, &event.UpdatedAt)
}

// CreateBatch inserts events in one transaction.
func (r *EventRepository) CreateBatch(ctx context.Context, events []*models.Event) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, event := range events {
		batch.Queue(
			`INSERT INTO event (user_id, date, start_time, end_time, title, description,
			 category_id, is_plan, is_sleep, import_id)
			 VALUES ($1, $2::date, $3::time, $4::time, $5, $6, $7, $8, $9, NULLIF($10, '')::uuid)
			 RETURNING event_id, created_at, updated_at`,
			event.UserID, event.Date, event.StartTime, event.EndTime, event.Title, event.Description,
			event.CategoryID, event.IsPlan, event.IsSleep, event.ImportID,
		).QueryRow(func(row pgx.Row) error {
			return row.Scan(&event.EventID, &event.CreatedAt, &event.UpdatedAt)
		})
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *EventRepository) GetByID(ctx context.Context, eventID, userID int64) (*models.Event, error) {
	event := &models.Event{}
	err := scanEvent(r.db.Pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM event e WHERE e.event_id = $1 AND e.user_id = $2`,
		eventID, userID,
	), event)
	if err != nil {
		return nil, notFound(err)
	}
	return event, nil
}

// GetByDates returns the events anchored on any of dates.
func (r *EventRepository) GetByDates(ctx context.Context, userID int64, dates []string) ([]*models.Event, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+` FROM event e
		 WHERE e.user_id = $1 AND e.date = ANY($2::text[]::date[])
		 ORDER BY e.date ASC, e.start_time ASC`,
		userID, dates,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanEvents(rows)
}

// GetByDateRange returns the events anchored between from and to inclusive.
func (r *EventRepository) GetByDateRange(ctx context.Context, userID int64, from, to string) ([]*models.Event, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+` FROM event e
		 WHERE e.user_id = $1 AND e.date BETWEEN $2::date AND $3::date
		 ORDER BY e.date ASC, e.start_time ASC`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanEvents(rows)
}

// GetActualWithCategory returns non-plan events anchored between from and to,
// each with its category name.
func (r *EventRepository) GetActualWithCategory(ctx context.Context, userID int64, from, to string) ([]*models.EventWithCategory, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+`, COALESCE(c.name, '') FROM event e
		 LEFT JOIN category c ON c.category_id = e.category_id
		 WHERE e.user_id = $1 AND e.is_plan = FALSE AND e.date BETWEEN $2::date AND $3::date
		 ORDER BY e.date ASC, e.start_time ASC`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.EventWithCategory
	for rows.Next() {
		ev := &models.EventWithCategory{}
		if err := scanEvent(rows, &ev.Event, &ev.CategoryName); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	err := r.db.Pool.QueryRow(ctx,
		`UPDATE event SET date = $1::date, start_time = $2::time, end_time = $3::time,
		 title = $4, description = $5, category_id = $6, is_plan = $7, is_sleep = $8,
		 updated_at = NOW()
		 WHERE event_id = $9 AND user_id = $10
		 RETURNING updated_at`,
		event.Date, event.StartTime, event.EndTime, event.Title, event.Description,
		event.CategoryID, event.IsPlan, event.IsSleep, event.EventID, event.UserID,
	).Scan(&event.UpdatedAt)
	return notFound(err)
}

func (r *EventRepository) Delete(ctx context.Context, eventID, userID int64) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM event WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByImport removes every event of an import batch and returns the
// distinct dates they were anchored on.
func (r *EventRepository) DeleteByImport(ctx context.Context, userID int64, importID string) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx,
		`DELETE FROM event WHERE user_id = $1 AND import_id = $2::uuid
		 RETURNING date::text`,
		userID, importID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var dates []string
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, err
		}
		if !seen[date] {
			seen[date] = true
			dates = append(dates, date)
		}
	}
	return dates, rows.Err()
}

func (r *EventRepository) scanEvents(rows pgx.Rows) ([]*models.Event, error) {
	var events []*models.Event
	for rows.Next() {
		event := &models.Event{}
		if err := scanEvent(rows, event); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
