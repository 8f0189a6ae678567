// Package planner composes storage, day resolution and layout into the
// operations the web and command line surfaces expose.
package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hray3182/daybook/internal/cache"
	"github.com/hray3182/daybook/internal/clock"
	"github.com/hray3182/daybook/internal/layout"
	"github.com/hray3182/daybook/internal/models"
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidInterval = errors.New("invalid interval")
	ErrInvalidInput    = errors.New("invalid input")
)

type EventStore interface {
	Create(ctx context.Context, event *models.Event) error
	CreateBatch(ctx context.Context, events []*models.Event) error
	GetByID(ctx context.Context, eventID, userID int64) (*models.Event, error)
	GetByDates(ctx context.Context, userID int64, dates []string) ([]*models.Event, error)
	GetByDateRange(ctx context.Context, userID int64, from, to string) ([]*models.Event, error)
	GetActualWithCategory(ctx context.Context, userID int64, from, to string) ([]*models.EventWithCategory, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, eventID, userID int64) error
	DeleteByImport(ctx context.Context, userID int64, importID string) ([]string, error)
}

type CategoryStore interface {
	Create(ctx context.Context, category *models.Category) error
	GetByUserID(ctx context.Context, userID int64) ([]*models.Category, error)
	GetByID(ctx context.Context, categoryID, userID int64) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, categoryID, userID int64) error
}

type RoutineStore interface {
	Create(ctx context.Context, routine *models.Routine) error
	GetByUserID(ctx context.Context, userID int64) ([]*models.Routine, error)
	GetByID(ctx context.Context, routineID, userID int64) (*models.Routine, error)
	Update(ctx context.Context, routine *models.Routine) error
	Delete(ctx context.Context, routineID, userID int64) error
}

type RoutineCheckStore interface {
	Set(ctx context.Context, check *models.RoutineCheck) error
	Get(ctx context.Context, userID, routineID int64, date string) (*models.RoutineCheck, error)
	GetByDateRange(ctx context.Context, userID int64, from, to string) ([]*models.RoutineCheck, error)
}

type TodoStore interface {
	Create(ctx context.Context, todo *models.Todo) error
	GetByUserID(ctx context.Context, userID int64, includeCompleted bool) ([]*models.Todo, error)
	GetByDate(ctx context.Context, userID int64, date string) ([]*models.Todo, error)
	GetByID(ctx context.Context, todoID, userID int64) (*models.Todo, error)
	Complete(ctx context.Context, todoID, userID int64, at time.Time, eventID *int64) error
	Delete(ctx context.Context, todoID, userID int64) error
}

type DailyNoteStore interface {
	Get(ctx context.Context, userID int64, date string) (*models.DailyNote, error)
	Upsert(ctx context.Context, note *models.DailyNote) error
}

type ImportStore interface {
	Create(ctx context.Context, imp *models.ICSImport) error
	GetBySource(ctx context.Context, userID int64, source string) ([]*models.ICSImport, error)
	Delete(ctx context.Context, importID string, userID int64) error
}

type UserStore interface {
	Ensure(ctx context.Context, userID int64) (*models.User, error)
}

type SettingsStore interface {
	GetOrCreate(ctx context.Context, userID int64) (*models.UserSettings, error)
	Update(ctx context.Context, settings *models.UserSettings) error
}

// Stores bundles the persistence collaborators of a Service.
type Stores struct {
	Users      UserStore
	Events     EventStore
	Categories CategoryStore
	Routines   RoutineStore
	Checks     RoutineCheckStore
	Todos      TodoStore
	Notes      DailyNoteStore
	Imports    ImportStore
	Settings   SettingsStore
}

type Service struct {
	stores   Stores
	days     cache.Cache[*DayView]
	memo     *layout.Memo
	location *time.Location
	now      func() time.Time

	mu          sync.Mutex
	versions    map[int64]int
	generations map[int64]int
	known       map[int64]bool
}

// New creates a Service. days caches resolved day views; pass cache.Noop to
// disable caching.
func New(stores Stores, days cache.Cache[*DayView], loc *time.Location) *Service {
	if days == nil {
		days = cache.Noop[*DayView]{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		stores:      stores,
		days:        days,
		memo:        layout.NewMemo(0),
		location:    loc,
		now:         time.Now,
		versions:    make(map[int64]int),
		generations: make(map[int64]int),
		known:       make(map[int64]bool),
	}
}

// Location is the timezone used for "today" and "now".
func (s *Service) Location() *time.Location {
	return s.location
}

// Today returns the current calendar date in the service timezone.
func (s *Service) Today() string {
	return clock.FormatDate(clock.Today(s.now(), s.location))
}

func (s *Service) ensureUser(ctx context.Context, userID int64) error {
	s.mu.Lock()
	known := s.known[userID]
	s.mu.Unlock()
	if known || s.stores.Users == nil {
		return nil
	}

	if _, err := s.stores.Users.Ensure(ctx, userID); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	s.mu.Lock()
	s.known[userID] = true
	s.mu.Unlock()
	return nil
}

func (s *Service) dayKey(userID int64, date string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dayKeyLocked(userID, date)
}

func (s *Service) dayKeyLocked(userID int64, date string) string {
	return fmt.Sprintf("%d:%d:%s", userID, s.versions[userID], date)
}

// generation counts the invalidations of a user. A day view computed while
// it changed may already be stale.
func (s *Service) generation(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[userID]
}

// storeDay caches view unless the user's data changed since gen was taken.
func (s *Service) storeDay(userID int64, gen int, key string, view *DayView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[userID] != gen {
		return
	}
	s.days.Set(key, view)
}

// invalidate drops the cached views that can show an event anchored on any of
// dates: the date itself, the next day for overnight spill, and the previous
// day whose sleep time may come from it.
func (s *Service) invalidate(userID int64, dates ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[userID]++

	var keys []string
	for _, date := range dates {
		if date == "" {
			continue
		}
		for _, offset := range []int{-1, 0, 1} {
			d, err := clock.AddDays(date, offset)
			if err != nil {
				continue
			}
			keys = append(keys, s.dayKeyLocked(userID, d))
		}
	}
	s.days.Delete(keys...)
}

// forget drops the cached view of date alone.
func (s *Service) forget(userID int64, date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[userID]++
	s.days.Delete(s.dayKeyLocked(userID, date))
}

// invalidateAll retires every cached view of a user. Used when routines or
// categories change, since those affect every day.
func (s *Service) invalidateAll(userID int64) {
	s.mu.Lock()
	s.versions[userID]++
	s.generations[userID]++
	s.mu.Unlock()
}

func parseDate(date string) (time.Time, error) {
	d, err := clock.ParseDate(date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDate, date)
	}
	return d, nil
}
