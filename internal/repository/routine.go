package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hray3182/daybook/internal/database"
	"github.com/hray3182/daybook/internal/models"
)

const routineColumns = `routine_id, user_id, text, emoji, scheduled_time::text, duration, weekdays,
	start_date::text, end_date::text, category_id, created_at`

type RoutineRepository struct {
	db *database.DB
}

func NewRoutineRepository(db *database.DB) *RoutineRepository {
	return &RoutineRepository{db: db}
}

func scanRoutine(row pgx.Row) (*models.Routine, error) {
	routine := &models.Routine{}
	var weekdaysJSON []byte
	err := row.Scan(&routine.RoutineID, &routine.UserID, &routine.Text, &routine.Emoji,
		&routine.ScheduledTime, &routine.Duration, &weekdaysJSON,
		&routine.StartDate, &routine.EndDate, &routine.CategoryID, &routine.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := routine.Weekdays.UnmarshalJSON(weekdaysJSON); err != nil {
		return nil, err
	}
	return routine, nil
}

func (r *RoutineRepository) Create(ctx context.Context, routine *models.Routine) error {
	weekdaysJSON, err := routine.Weekdays.MarshalJSON()
	if err != nil {
		return err
	}
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO routine (user_id, text, emoji, scheduled_time, duration, weekdays,
		 start_date, end_date, category_id)
		 VALUES ($1, $2, $3, $4::time, $5, $6, $7::date, $8::date, $9)
		 RETURNING routine_id, created_at`,
		routine.UserID, routine.Text, routine.Emoji, routine.ScheduledTime, routine.Duration,
		weekdaysJSON, routine.StartDate, routine.EndDate, routine.CategoryID,
	).Scan(&routine.RoutineID, &routine.CreatedAt)
}

func (r *RoutineRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Routine, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+routineColumns+` FROM routine
		 WHERE user_id = $1 ORDER BY scheduled_time ASC, routine_id ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routines []*models.Routine
	for rows.Next() {
		routine, err := scanRoutine(rows)
		if err != nil {
			return nil, err
		}
		routines = append(routines, routine)
	}
	return routines, rows.Err()
}

func (r *RoutineRepository) GetByID(ctx context.Context, routineID, userID int64) (*models.Routine, error) {
	routine, err := scanRoutine(r.db.Pool.QueryRow(ctx,
		`SELECT `+routineColumns+` FROM routine WHERE routine_id = $1 AND user_id = $2`,
		routineID, userID,
	))
	if err != nil {
		return nil, notFound(err)
	}
	return routine, nil
}

func (r *RoutineRepository) Update(ctx context.Context, routine *models.Routine) error {
	weekdaysJSON, err := routine.Weekdays.MarshalJSON()
	if err != nil {
		return err
	}
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE routine SET text = $1, emoji = $2, scheduled_time = $3::time, duration = $4,
		 weekdays = $5, start_date = $6::date, end_date = $7::date, category_id = $8
		 WHERE routine_id = $9 AND user_id = $10`,
		routine.Text, routine.Emoji, routine.ScheduledTime, routine.Duration, weekdaysJSON,
		routine.StartDate, routine.EndDate, routine.CategoryID, routine.RoutineID, routine.UserID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RoutineRepository) Delete(ctx context.Context, routineID, userID int64) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM routine WHERE routine_id = $1 AND user_id = $2`,
		routineID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
