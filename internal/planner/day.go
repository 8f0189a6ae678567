package planner

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/hray3182/daybook/internal/dayview"
	"github.com/hray3182/daybook/internal/layout"
	"github.com/hray3182/daybook/internal/models"
	"github.com/hray3182/daybook/internal/repository"
	"github.com/hray3182/daybook/internal/rrule"
)

// Item is an event placed on the displayed day.
type Item struct {
	Key                   string       `json:"key"`
	Event                 models.Event `json:"event"`
	StartMinute           int          `json:"start_minute"`
	EndMinute             int          `json:"end_minute"`
	ContinuesFromPrevious bool         `json:"continues_from_previous"`
	ContinuesToNext       bool         `json:"continues_to_next"`
	Column                int          `json:"column"`
	Columns               int          `json:"columns"`
	Virtual               bool         `json:"virtual"`
}

// RoutineStatus is a routine scheduled on the day and whether it was checked.
type RoutineStatus struct {
	Routine *models.Routine `json:"routine"`
	Checked bool            `json:"checked"`
}

// DayView is everything shown for one calendar day.
type DayView struct {
	Date      string            `json:"date"`
	Plan      []Item            `json:"plan"`
	Actual    []Item            `json:"actual"`
	WakeSleep dayview.WakeSleep `json:"wake_sleep"`
	Routines  []RoutineStatus   `json:"routines"`
	Todos     []*models.Todo    `json:"todos"`
	Note      *models.DailyNote `json:"note"`
}

func itemKey(p dayview.Placed) string {
	if p.Event.IsVirtual() {
		return "r" + strconv.FormatInt(*p.Event.RoutineID, 10) + "@" + p.Event.Date
	}
	return "e" + strconv.FormatInt(p.Event.EventID, 10)
}

func deref(events []*models.Event) []models.Event {
	out := make([]models.Event, 0, len(events))
	for _, ev := range events {
		out = append(out, *ev)
	}
	return out
}

// Day resolves the plan and actual columns of date together with the wake and
// sleep times, routine checks, todos and note of that day.
func (s *Service) Day(ctx context.Context, userID int64, date string) (*DayView, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	key := s.dayKey(userID, date)
	if view, ok := s.days.Get(key); ok {
		return view, nil
	}
	gen := s.generation(userID)

	stored, err := s.stores.Events.GetByDates(ctx, userID, dayview.CandidateDates(day))
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	routines, err := s.stores.Routines.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get routines: %w", err)
	}

	// Routines of the previous day can run past midnight into this one.
	candidates := deref(stored)
	candidates = append(candidates, rrule.MaterializeAll(routines, day.AddDate(0, 0, -1))...)
	candidates = append(candidates, rrule.MaterializeAll(routines, day)...)

	plan, actual := dayview.SplitColumns(dayview.VisibleOn(day, candidates))

	view := &DayView{
		Date:   date,
		Plan:   s.place(plan),
		Actual: s.place(actual),
	}

	if view.WakeSleep, err = s.wakeSleep(ctx, userID, day); err != nil {
		return nil, err
	}

	checks, err := s.stores.Checks.GetByDateRange(ctx, userID, date, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get routine checks: %w", err)
	}
	checked := make(map[int64]bool, len(checks))
	for _, c := range checks {
		checked[c.RoutineID] = c.Checked
	}
	for _, r := range routines {
		if rrule.OccursOn(r, day) {
			view.Routines = append(view.Routines, RoutineStatus{Routine: r, Checked: checked[r.RoutineID]})
		}
	}

	if view.Todos, err = s.stores.Todos.GetByDate(ctx, userID, date); err != nil {
		return nil, fmt.Errorf("failed to get todos: %w", err)
	}

	note, err := s.stores.Notes.Get(ctx, userID, date)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get daily note: %w", err)
	}
	view.Note = note

	s.storeDay(userID, gen, key, view)
	return view, nil
}

// place lays out one column. Events that are visible on the day but occupy
// none of it, like one ending exactly at midnight, are left out.
func (s *Service) place(visible []dayview.Placed) []Item {
	placed := make([]dayview.Placed, 0, len(visible))
	for _, p := range visible {
		if p.EndMinute > p.StartMinute {
			placed = append(placed, p)
		}
	}

	placements := s.memo.Columns(layout.ItemsFromPlaced(placed, itemKey))
	byKey := make(map[string]layout.Placement, len(placements))
	for _, p := range placements {
		byKey[p.Key] = p
	}

	items := make([]Item, 0, len(placed))
	for _, p := range placed {
		key := itemKey(p)
		pl := byKey[key]
		items = append(items, Item{
			Key:                   key,
			Event:                 p.Event,
			StartMinute:           p.StartMinute,
			EndMinute:             p.EndMinute,
			ContinuesFromPrevious: p.ContinuesFromPrevious,
			ContinuesToNext:       p.ContinuesToNext,
			Column:                pl.Column,
			Columns:               pl.Columns,
			Virtual:               p.Event.IsVirtual(),
		})
	}
	return items
}

// WakeSleep returns the inferred wake and sleep times of date.
func (s *Service) WakeSleep(ctx context.Context, userID int64, date string) (dayview.WakeSleep, error) {
	day, err := parseDate(date)
	if err != nil {
		return dayview.WakeSleep{}, err
	}
	if view, ok := s.days.Get(s.dayKey(userID, date)); ok {
		return view.WakeSleep, nil
	}
	return s.wakeSleep(ctx, userID, day)
}

func (s *Service) wakeSleep(ctx context.Context, userID int64, day time.Time) (dayview.WakeSleep, error) {
	from, to := dayview.WindowDates(day)
	events, err := s.stores.Events.GetActualWithCategory(ctx, userID, from, to)
	if err != nil {
		return dayview.WakeSleep{}, fmt.Errorf("failed to get sleep events: %w", err)
	}

	candidates := make([]dayview.SleepCandidate, 0, len(events))
	for _, ev := range events {
		candidates = append(candidates, dayview.SleepCandidate{Event: ev.Event, CategoryName: ev.CategoryName})
	}
	return dayview.ResolveWakeSleep(day, candidates), nil
}
