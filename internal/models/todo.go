package models

import "time"

type Todo struct {
	TodoID      int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Title       string     `json:"title"`
	Date        *string    `json:"date"` // day the todo is planned for, nil = backlog
	CategoryID  *int64     `json:"category_id"`
	CompletedAt *time.Time `json:"completed_at"`
	EventID     *int64     `json:"event_id"` // event created when the todo was promoted on completion
	CreatedAt   time.Time  `json:"created_at"`
}

func (t *Todo) IsCompleted() bool {
	return t.CompletedAt != nil
}
