package repository

import (
	"context"
	"errors"

	"github.com/hray3182/daybook/internal/database"
	"github.com/hray3182/daybook/internal/models"
)

type RoutineCheckRepository struct {
	db *database.DB
}

func NewRoutineCheckRepository(db *database.DB) *RoutineCheckRepository {
	return &RoutineCheckRepository{db: db}
}

// Set stores the checked state of a routine on a date, replacing any earlier value.
func (r *RoutineCheckRepository) Set(ctx context.Context, check *models.RoutineCheck) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO routine_check (user_id, routine_id, date, checked)
		 VALUES ($1, $2, $3::date, $4)
		 ON CONFLICT (routine_id, date) DO UPDATE SET checked = EXCLUDED.checked`,
		check.UserID, check.RoutineID, check.Date, check.Checked,
	)
	return err
}

// Get returns the check for a routine on a date. A missing row reads as unchecked.
func (r *RoutineCheckRepository) Get(ctx context.Context, userID, routineID int64, date string) (*models.RoutineCheck, error) {
	check := &models.RoutineCheck{UserID: userID, RoutineID: routineID, Date: date}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT checked FROM routine_check
		 WHERE user_id = $1 AND routine_id = $2 AND date = $3::date`,
		userID, routineID, date,
	).Scan(&check.Checked)
	if err != nil {
		if errors.Is(notFound(err), ErrNotFound) {
			return check, nil
		}
		return nil, err
	}
	return check, nil
}

// GetByDateRange returns every stored check between from and to inclusive,
// regardless of whether the routine is scheduled on that date.
func (r *RoutineCheckRepository) GetByDateRange(ctx context.Context, userID int64, from, to string) ([]*models.RoutineCheck, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT user_id, routine_id, date::text, checked FROM routine_check
		 WHERE user_id = $1 AND date BETWEEN $2::date AND $3::date
		 ORDER BY date ASC, routine_id ASC`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []*models.RoutineCheck
	for rows.Next() {
		c := &models.RoutineCheck{}
		if err := rows.Scan(&c.UserID, &c.RoutineID, &c.Date, &c.Checked); err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}
	return checks, rows.Err()
}
