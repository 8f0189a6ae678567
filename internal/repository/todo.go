package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hray3182/daybook/internal/database"
	"github.com/hray3182/daybook/internal/models"
)

const todoColumns = `todo_id, user_id, title, date::text, category_id, completed_at, event_id, created_at`

type TodoRepository struct {
	db *database.DB
}

func NewTodoRepository(db *database.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

func scanTodo(row pgx.Row) (*models.Todo, error) {
	todo := &models.Todo{}
	err := row.Scan(&todo.TodoID, &todo.UserID, &todo.Title, &todo.Date, &todo.CategoryID,
		&todo.CompletedAt, &todo.EventID, &todo.CreatedAt)
	if err != nil {
		return nil, err
	}
	return todo, nil
}

func (r *TodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO todo (user_id, title, date, category_id)
		 VALUES ($1, $2, $3::date, $4)
		 RETURNING todo_id, created_at`,
		todo.UserID, todo.Title, todo.Date, todo.CategoryID,
	).Scan(&todo.TodoID, &todo.CreatedAt)
}

func (r *TodoRepository) GetByUserID(ctx context.Context, userID int64, includeCompleted bool) ([]*models.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todo WHERE user_id = $1`
	if !includeCompleted {
		query += ` AND completed_at IS NULL`
	}
	query += ` ORDER BY date ASC NULLS LAST, created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTodos(rows)
}

// GetByDate returns the todos planned for date, completed ones included.
func (r *TodoRepository) GetByDate(ctx context.Context, userID int64, date string) ([]*models.Todo, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+todoColumns+` FROM todo
		 WHERE user_id = $1 AND date = $2::date
		 ORDER BY completed_at ASC NULLS FIRST, created_at ASC`,
		userID, date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTodos(rows)
}

func (r *TodoRepository) GetByID(ctx context.Context, todoID, userID int64) (*models.Todo, error) {
	todo, err := scanTodo(r.db.Pool.QueryRow(ctx,
		`SELECT `+todoColumns+` FROM todo WHERE todo_id = $1 AND user_id = $2`,
		todoID, userID,
	))
	if err != nil {
		return nil, notFound(err)
	}
	return todo, nil
}

// Complete marks a todo done, linking the event it was promoted to if any.
func (r *TodoRepository) Complete(ctx context.Context, todoID, userID int64, at time.Time, eventID *int64) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE todo SET completed_at = $1, event_id = $2 WHERE todo_id = $3 AND user_id = $4`,
		at, eventID, todoID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TodoRepository) Delete(ctx context.Context, todoID, userID int64) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM todo WHERE todo_id = $1 AND user_id = $2`,
		todoID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTodos(rows pgx.Rows) ([]*models.Todo, error) {
	var todos []*models.Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}
