package rrule

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/hray3182/daybook/internal/clock"
	"github.com/hray3182/daybook/internal/models"
)

// weekdayMap maps Sunday=0 .. Saturday=6 onto rrule weekdays
var weekdayMap = [7]rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// RoutineRule builds the recurrence of a routine as seen from day.
//
// A routine without a start date is unbounded backwards, so the rule starts at
// day itself in that case; this keeps the rule small without changing which
// days it matches from day onward.
func RoutineRule(r *models.Routine, day time.Time) (*rrule.RRule, error) {
	dtstart := day
	if r.StartDate != nil && *r.StartDate != "" {
		start, err := clock.ParseDate(*r.StartDate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse routine start date: %w", err)
		}
		if start.After(day) {
			dtstart = start
		}
	}

	opt := rrule.ROption{
		Freq:     rrule.DAILY,
		Interval: 1,
		Dtstart:  dtstart,
	}

	if !r.Weekdays.EveryDay() {
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = make([]rrule.Weekday, 0, len(r.Weekdays))
		for _, d := range r.Weekdays {
			opt.Byweekday = append(opt.Byweekday, weekdayMap[d])
		}
	}

	if r.EndDate != nil && *r.EndDate != "" {
		end, err := clock.ParseDate(*r.EndDate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse routine end date: %w", err)
		}
		_, opt.Until = clock.DayBounds(end)
	}

	return rrule.NewRRule(opt)
}

// OccursOn reports whether the routine materializes on day
func OccursOn(r *models.Routine, day time.Time) bool {
	rule, err := RoutineRule(r, day)
	if err != nil {
		return false
	}
	dayStart, dayEnd := clock.DayBounds(day)
	return len(rule.Between(dayStart, dayEnd, true)) > 0
}

// Materialize projects a routine onto day as a virtual plan event.
// The event has no id and is never persisted.
func Materialize(r *models.Routine, day time.Time) (models.Event, bool) {
	if !OccursOn(r, day) {
		return models.Event{}, false
	}

	start, err := clock.ParseClock(r.ScheduledTime)
	if err != nil {
		return models.Event{}, false
	}
	duration := time.Duration(r.Duration) * time.Minute
	if duration <= 0 {
		duration = clock.Step * time.Minute
	}

	routineID := r.RoutineID
	return models.Event{
		UserID:     r.UserID,
		Date:       clock.FormatDate(day),
		StartTime:  clock.FormatClock(start),
		EndTime:    clock.FormatClock(start + duration),
		Title:      r.Title(),
		CategoryID: r.CategoryID,
		IsPlan:     true,
		RoutineID:  &routineID,
	}, true
}

// MaterializeAll projects every routine that occurs on day.
func MaterializeAll(routines []*models.Routine, day time.Time) []models.Event {
	var out []models.Event
	for _, r := range routines {
		if ev, ok := Materialize(r, day); ok {
			out = append(out, ev)
		}
	}
	return out
}

// String renders the routine's recurrence as an RRULE value
func String(r *models.Routine) string {
	parts := []string{"FREQ=DAILY"}
	if !r.Weekdays.EveryDay() {
		parts[0] = "FREQ=WEEKLY"
		days := make([]string, len(r.Weekdays))
		for i, d := range r.Weekdays {
			days[i] = weekdayMap[d].String()
		}
		parts = append(parts, "BYDAY="+strings.Join(days, ","))
	}
	if r.EndDate != nil && *r.EndDate != "" {
		if end, err := clock.ParseDate(*r.EndDate); err == nil {
			_, last := clock.DayBounds(end)
			parts = append(parts, "UNTIL="+last.Format("20060102T150405Z"))
		}
	}
	return strings.Join(parts, ";")
}

// HumanReadable returns a short description such as "Mon, Wed, Fri at 07:00 for 30m"
func HumanReadable(r *models.Routine) string {
	var b strings.Builder
	if r.Weekdays.EveryDay() {
		b.WriteString("every day")
	} else {
		names := make([]string, len(r.Weekdays))
		for i, d := range r.Weekdays {
			names[i] = weekdayNames[d]
		}
		b.WriteString(strings.Join(names, ", "))
	}
	b.WriteString(" at " + clock.ShortClock(r.ScheduledTime))
	if r.Duration > 0 {
		b.WriteString(fmt.Sprintf(" for %dm", r.Duration))
	}
	if r.StartDate != nil && *r.StartDate != "" {
		b.WriteString(", from " + *r.StartDate)
	}
	if r.EndDate != nil && *r.EndDate != "" {
		b.WriteString(", until " + *r.EndDate)
	}
	return b.String()
}
