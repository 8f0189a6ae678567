package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/hray3182/daybook/internal/clock"
	"github.com/hray3182/daybook/internal/models"
	"github.com/hray3182/daybook/internal/rrule"
)

// RoutineStats counts a routine over one month.
type RoutineStats struct {
	Routine *models.Routine `json:"routine"`
	// Scheduled is the number of days the routine occurs on.
	Scheduled int `json:"scheduled"`
	// Checked counts checks on scheduled days only.
	Checked int `json:"checked"`
	// CheckedAnyDay counts every stored check, including days the routine
	// does not occur on. It differs from Checked when checks were stored
	// before the routine's schedule changed.
	CheckedAnyDay int `json:"checked_any_day"`
}

type MonthStats struct {
	Month    string         `json:"month"`
	Days     int            `json:"days"`
	Routines []RoutineStats `json:"routines"`
}

// Stats summarizes routine completion for month (YYYY-MM).
func (s *Service) Stats(ctx context.Context, userID int64, month string) (*MonthStats, error) {
	first, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, fmt.Errorf("%w: month %s", ErrInvalidDate, month)
	}
	last := first.AddDate(0, 1, -1)
	from, to := clock.FormatDate(first), clock.FormatDate(last)

	routines, err := s.stores.Routines.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get routines: %w", err)
	}
	checks, err := s.stores.Checks.GetByDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get routine checks: %w", err)
	}

	stats := &MonthStats{Month: month, Days: last.Day()}
	index := make(map[int64]int, len(routines))
	for i, r := range routines {
		index[r.RoutineID] = i
		rs := RoutineStats{Routine: r}
		for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
			if rrule.OccursOn(r, d) {
				rs.Scheduled++
			}
		}
		stats.Routines = append(stats.Routines, rs)
	}

	for _, c := range checks {
		i, ok := index[c.RoutineID]
		if !ok || !c.Checked {
			continue
		}
		rs := &stats.Routines[i]
		rs.CheckedAnyDay++
		day, err := clock.ParseDate(c.Date)
		if err != nil {
			continue
		}
		if rrule.OccursOn(rs.Routine, day) {
			rs.Checked++
		}
	}
	return stats, nil
}
