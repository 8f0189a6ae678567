package models

import (
	"time"

	"github.com/hray3182/daybook/internal/clock"
)

// Event is a scheduled interval anchored to its start date. StartTime and
// EndTime are wall-clock HH:MM:SS values; an EndTime earlier than StartTime
// means the event ends on the following day.
type Event struct {
	EventID     int64     `json:"id,omitempty"`
	UserID      int64     `json:"user_id"`
	Date        string    `json:"date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CategoryID  *int64    `json:"category_id"`
	IsPlan      bool      `json:"is_plan"`
	IsSleep     bool      `json:"is_sleep"`
	RoutineID   *int64    `json:"routine_id,omitempty"` // set only on materialized routines
	ImportID    string    `json:"import_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsSaved reports whether the event has been persisted.
func (e *Event) IsSaved() bool {
	return e.EventID != 0
}

// IsVirtual reports whether the event is a routine projection.
func (e *Event) IsVirtual() bool {
	return e.RoutineID != nil && e.EventID == 0
}

func (e *Event) IsOvernight() bool {
	return clock.IsOvernight(e.StartTime, e.EndTime)
}

// Span returns the absolute start and end of the event.
func (e *Event) Span() (time.Time, time.Time, error) {
	return clock.Span(e.Date, e.StartTime, e.EndTime)
}

// EndDate returns the calendar date the event ends on.
func (e *Event) EndDate() (string, error) {
	return clock.EndDate(e.Date, e.StartTime, e.EndTime)
}

// EventPatch carries the fields of a partial update. Nil fields are left alone.
type EventPatch struct {
	Date        *string `json:"date"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CategoryID  *int64  `json:"category_id"`
	IsPlan      *bool   `json:"is_plan"`
	IsSleep     *bool   `json:"is_sleep"`
}

// Apply copies the set fields of p onto e.
func (p EventPatch) Apply(e *Event) {
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.CategoryID != nil {
		id := *p.CategoryID
		e.CategoryID = &id
	}
	if p.IsPlan != nil {
		e.IsPlan = *p.IsPlan
	}
	if p.IsSleep != nil {
		e.IsSleep = *p.IsSleep
	}
}

// IsEmpty reports whether the patch changes nothing.
func (p EventPatch) IsEmpty() bool {
	return p.Date == nil && p.StartTime == nil && p.EndTime == nil && p.Title == nil &&
		p.Description == nil && p.CategoryID == nil && p.IsPlan == nil && p.IsSleep == nil
}

// EventWithCategory is an event together with its category name.
type EventWithCategory struct {
	Event
	CategoryName string `json:"category_name"`
}
