package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hray3182/daybook/internal/cache"
	"github.com/hray3182/daybook/internal/models"
	"github.com/hray3182/daybook/internal/repository/memory"
)

// fixture is an in-memory store whose event reads are counted and whose
// updates can be made to fail. onRead runs after each day read, standing in
// for a writer that lands while a day is being resolved.
type fixture struct {
	*memory.Store
	events *countingEvents
}

type countingEvents struct {
	*memory.Events
	reads      int
	failUpdate error
	onRead     func()
}

func (c *countingEvents) GetByDates(ctx context.Context, userID int64, dates []string) ([]*models.Event, error) {
	c.reads++
	events, err := c.Events.GetByDates(ctx, userID, dates)
	if c.onRead != nil {
		c.onRead()
	}
	return events, err
}

func (c *countingEvents) Update(ctx context.Context, ev *models.Event) error {
	if c.failUpdate != nil {
		return c.failUpdate
	}
	return c.Events.Update(ctx, ev)
}

func newMemory() *fixture {
	store := memory.New()
	return &fixture{Store: store, events: &countingEvents{Events: store.Events()}}
}

func (f *fixture) stores() Stores {
	return Stores{
		Users:      f.Users(),
		Events:     f.events,
		Categories: f.Categories(),
		Routines:   f.Routines(),
		Checks:     f.Checks(),
		Todos:      f.Todos(),
		Notes:      f.Notes(),
		Imports:    f.Imports(),
		Settings:   f.Settings(),
	}
}

func (f *fixture) allEvents(t *testing.T) []*models.Event {
	t.Helper()
	events, err := f.events.GetByDateRange(context.Background(), user, "0001-01-01", "9999-12-31")
	if err != nil {
		t.Fatalf("failed to list events: %v", err)
	}
	return events
}

func (f *fixture) importsOf(t *testing.T, source string) []*models.ICSImport {
	t.Helper()
	imports, err := f.Imports().GetBySource(context.Background(), user, source)
	if err != nil {
		t.Fatalf("failed to list imports: %v", err)
	}
	return imports
}

func newTestService(f *fixture) *Service {
	s := New(f.stores(), cache.NewTTL[*DayView](time.Minute), time.UTC)
	s.now = func() time.Time { return time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC) }
	return s
}

var errBoom = errors.New("boom")
