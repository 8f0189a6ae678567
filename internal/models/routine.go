package models

import (
	"time"
)

// Routine is a recurring plan item projected onto matching days at read time.
type Routine struct {
	RoutineID     int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Text          string    `json:"text"`
	Emoji         string    `json:"emoji"`
	ScheduledTime string    `json:"scheduled_time"` // HH:MM:SS
	Duration      int       `json:"duration"`       // minutes
	Weekdays      Weekdays  `json:"weekdays"`
	StartDate     *string   `json:"start_date"` // inclusive, nil = unbounded
	EndDate       *string   `json:"end_date"`   // inclusive, nil = unbounded
	CategoryID    *int64    `json:"category_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Title is the label used for the routine's virtual event.
func (r *Routine) Title() string {
	if r.Emoji == "" {
		return r.Text
	}
	return r.Emoji + " " + r.Text
}

// InRange reports whether date (YYYY-MM-DD) lies inside the validity window.
func (r *Routine) InRange(date string) bool {
	if r.StartDate != nil && *r.StartDate != "" && date < *r.StartDate {
		return false
	}
	if r.EndDate != nil && *r.EndDate != "" && date > *r.EndDate {
		return false
	}
	return true
}

// RoutineCheck records whether a routine was done on a date.
type RoutineCheck struct {
	UserID    int64  `json:"user_id"`
	RoutineID int64  `json:"routine_id"`
	Date      string `json:"date"`
	Checked   bool   `json:"checked"`
}
