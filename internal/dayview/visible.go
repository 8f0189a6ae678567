// Package dayview decides which stored events belong to a calendar day and
// derives the wake and sleep instants around it.
//
// Events may cross at most one midnight, so a day only ever needs the events
// dated on it and on the day before.
package dayview

import (
	"log"
	"sort"
	"time"

	"github.com/hray3182/daybook/internal/clock"
	"github.com/hray3182/daybook/internal/models"
)

// Placed is an event resolved against a target day.
type Placed struct {
	Event models.Event `json:"event"`
	Start time.Time    `json:"start"`
	End   time.Time    `json:"end"`
	// StartMinute and EndMinute are the display bounds relative to the target
	// day's midnight, clamped to [0, 1440].
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
	// ContinuesFromPrevious / ContinuesToNext mark clamped edges.
	ContinuesFromPrevious bool `json:"continues_from_previous"`
	ContinuesToNext       bool `json:"continues_to_next"`
}

// VisibleOn returns the candidates whose resolved interval touches day.
// Both ends of the day window are inclusive: an event ending exactly at
// 00:00:00 of day, or starting at 23:59:59, is still visible.
// Events with unparsable dates or times are skipped.
func VisibleOn(day time.Time, candidates []models.Event) []Placed {
	dayStart, dayEnd := clock.DayBounds(day)
	nextMidnight := dayStart.AddDate(0, 0, 1)

	out := make([]Placed, 0, len(candidates))
	for _, ev := range candidates {
		start, end, err := ev.Span()
		if err != nil {
			log.Printf("Skipping event %d with invalid time: %v", ev.EventID, err)
			continue
		}
		if start.After(dayEnd) || end.Before(dayStart) {
			continue
		}

		p := Placed{
			Event:       ev,
			Start:       start,
			End:         end,
			StartMinute: clock.MinutesBetween(dayStart, start),
			EndMinute:   clock.MinutesBetween(dayStart, end),
		}
		if start.Before(dayStart) {
			p.StartMinute = 0
			p.ContinuesFromPrevious = true
		}
		if end.After(nextMidnight) {
			p.EndMinute = clock.MinutesPerDay
			p.ContinuesToNext = true
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].End.After(out[j].End)
	})
	return out
}

// CandidateDates returns the dates whose events can be visible on day.
func CandidateDates(day time.Time) []string {
	return []string{clock.FormatDate(day.AddDate(0, 0, -1)), clock.FormatDate(day)}
}

// SplitColumns separates placed events into the plan and actual columns.
func SplitColumns(placed []Placed) (plan, actual []Placed) {
	for _, p := range placed {
		if p.Event.IsPlan {
			plan = append(plan, p)
		} else {
			actual = append(actual, p)
		}
	}
	return plan, actual
}
