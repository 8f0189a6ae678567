// Package memory keeps every table in process memory. It backs tests and the
// database-less development server.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hray3182/daybook/internal/models"
	"github.com/hray3182/daybook/internal/repository"
)

// Store holds the rows of every table behind one lock.
type Store struct {
	mu     sync.Mutex
	nextID int64

	users      map[int64]*models.User
	events     map[int64]*models.Event
	categories map[int64]*models.Category
	routines   map[int64]*models.Routine
	checks     map[string]*models.RoutineCheck
	todos      map[int64]*models.Todo
	notes      map[string]*models.DailyNote
	imports    map[string]*models.ICSImport
	settings   map[int64]*models.UserSettings
}

func New() *Store {
	return &Store{
		users:      map[int64]*models.User{},
		events:     map[int64]*models.Event{},
		categories: map[int64]*models.Category{},
		routines:   map[int64]*models.Routine{},
		checks:     map[string]*models.RoutineCheck{},
		todos:      map[int64]*models.Todo{},
		notes:      map[string]*models.DailyNote{},
		imports:    map[string]*models.ICSImport{},
		settings:   map[int64]*models.UserSettings{},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) Users() *Users           { return &Users{s} }
func (s *Store) Events() *Events         { return &Events{s} }
func (s *Store) Categories() *Categories { return &Categories{s} }
func (s *Store) Routines() *Routines     { return &Routines{s} }
func (s *Store) Checks() *RoutineChecks  { return &RoutineChecks{s} }
func (s *Store) Todos() *Todos           { return &Todos{s} }
func (s *Store) Notes() *DailyNotes      { return &DailyNotes{s} }
func (s *Store) Imports() *Imports       { return &Imports{s} }
func (s *Store) Settings() *UserSettings { return &UserSettings{s} }

type Users struct{ s *Store }

func (u *Users) Ensure(ctx context.Context, userID int64) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user, ok := u.s.users[userID]
	if !ok {
		user = &models.User{UserID: userID, CreatedAt: time.Now()}
		u.s.users[userID] = user
	}
	cp := *user
	return &cp, nil
}

func (u *Users) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user, ok := u.s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

type Events struct{ s *Store }

func (e *Events) create(ev *models.Event) {
	ev.EventID = e.s.id()
	now := time.Now()
	ev.CreatedAt, ev.UpdatedAt = now, now
	cp := *ev
	e.s.events[ev.EventID] = &cp
}

func (e *Events) Create(ctx context.Context, ev *models.Event) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	e.create(ev)
	return nil
}

func (e *Events) CreateBatch(ctx context.Context, events []*models.Event) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	for _, ev := range events {
		e.create(ev)
	}
	return nil
}

func (e *Events) GetByID(ctx context.Context, eventID, userID int64) (*models.Event, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	ev, ok := e.s.events[eventID]
	if !ok || ev.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *ev
	return &cp, nil
}

func (e *Events) filter(userID int64, keep func(*models.Event) bool) []*models.Event {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	var out []*models.Event
	for _, ev := range e.s.events {
		if ev.UserID == userID && keep(ev) {
			cp := *ev
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].EventID < out[j].EventID
	})
	return out
}

func (e *Events) GetByDates(ctx context.Context, userID int64, dates []string) ([]*models.Event, error) {
	set := make(map[string]bool, len(dates))
	for _, d := range dates {
		set[d] = true
	}
	return e.filter(userID, func(ev *models.Event) bool { return set[ev.Date] }), nil
}

func (e *Events) GetByDateRange(ctx context.Context, userID int64, from, to string) ([]*models.Event, error) {
	return e.filter(userID, func(ev *models.Event) bool { return ev.Date >= from && ev.Date <= to }), nil
}

func (e *Events) GetActualWithCategory(ctx context.Context, userID int64, from, to string) ([]*models.EventWithCategory, error) {
	events := e.filter(userID, func(ev *models.Event) bool {
		return !ev.IsPlan && ev.Date >= from && ev.Date <= to
	})

	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	out := make([]*models.EventWithCategory, 0, len(events))
	for _, ev := range events {
		name := ""
		if ev.CategoryID != nil {
			if c, ok := e.s.categories[*ev.CategoryID]; ok {
				name = c.Name
			}
		}
		out = append(out, &models.EventWithCategory{Event: *ev, CategoryName: name})
	}
	return out, nil
}

func (e *Events) Update(ctx context.Context, ev *models.Event) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	stored, ok := e.s.events[ev.EventID]
	if !ok || stored.UserID != ev.UserID {
		return repository.ErrNotFound
	}
	ev.UpdatedAt = time.Now()
	cp := *ev
	e.s.events[ev.EventID] = &cp
	return nil
}

func (e *Events) Delete(ctx context.Context, eventID, userID int64) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	ev, ok := e.s.events[eventID]
	if !ok || ev.UserID != userID {
		return repository.ErrNotFound
	}
	delete(e.s.events, eventID)
	return nil
}

func (e *Events) DeleteByImport(ctx context.Context, userID int64, importID string) ([]string, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	seen := map[string]bool{}
	var dates []string
	for id, ev := range e.s.events {
		if ev.UserID != userID || ev.ImportID != importID {
			continue
		}
		if !seen[ev.Date] {
			seen[ev.Date] = true
			dates = append(dates, ev.Date)
		}
		delete(e.s.events, id)
	}
	sort.Strings(dates)
	return dates, nil
}

type Categories struct{ s *Store }

func (c *Categories) Create(ctx context.Context, cat *models.Category) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	for _, other := range c.s.categories {
		if other.UserID == cat.UserID && other.Name == cat.Name {
			return fmt.Errorf("category %q already exists", cat.Name)
		}
	}
	cat.CategoryID = c.s.id()
	cp := *cat
	c.s.categories[cat.CategoryID] = &cp
	return nil
}

func (c *Categories) GetByUserID(ctx context.Context, userID int64) ([]*models.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	var out []*models.Category
	for _, cat := range c.s.categories {
		if cat.UserID == userID {
			cp := *cat
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *Categories) GetByID(ctx context.Context, categoryID, userID int64) (*models.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	cat, ok := c.s.categories[categoryID]
	if !ok || cat.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *cat
	return &cp, nil
}

func (c *Categories) Update(ctx context.Context, cat *models.Category) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	stored, ok := c.s.categories[cat.CategoryID]
	if !ok || stored.UserID != cat.UserID {
		return repository.ErrNotFound
	}
	cp := *cat
	c.s.categories[cat.CategoryID] = &cp
	return nil
}

func (c *Categories) Delete(ctx context.Context, categoryID, userID int64) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	cat, ok := c.s.categories[categoryID]
	if !ok || cat.UserID != userID {
		return repository.ErrNotFound
	}
	for _, ev := range c.s.events {
		if ev.CategoryID != nil && *ev.CategoryID == categoryID {
			return repository.ErrCategoryInUse
		}
	}
	delete(c.s.categories, categoryID)
	return nil
}

type Routines struct{ s *Store }

func (r *Routines) Create(ctx context.Context, routine *models.Routine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	routine.RoutineID = r.s.id()
	routine.CreatedAt = time.Now()
	cp := *routine
	r.s.routines[routine.RoutineID] = &cp
	return nil
}

func (r *Routines) GetByUserID(ctx context.Context, userID int64) ([]*models.Routine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*models.Routine
	for _, routine := range r.s.routines {
		if routine.UserID == userID {
			cp := *routine
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoutineID < out[j].RoutineID })
	return out, nil
}

func (r *Routines) GetByID(ctx context.Context, routineID, userID int64) (*models.Routine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	routine, ok := r.s.routines[routineID]
	if !ok || routine.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *routine
	return &cp, nil
}

func (r *Routines) Update(ctx context.Context, routine *models.Routine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.routines[routine.RoutineID]
	if !ok || stored.UserID != routine.UserID {
		return repository.ErrNotFound
	}
	routine.CreatedAt = stored.CreatedAt
	cp := *routine
	r.s.routines[routine.RoutineID] = &cp
	return nil
}

func (r *Routines) Delete(ctx context.Context, routineID, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	routine, ok := r.s.routines[routineID]
	if !ok || routine.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.s.routines, routineID)
	for key, check := range r.s.checks {
		if check.RoutineID == routineID {
			delete(r.s.checks, key)
		}
	}
	return nil
}

type RoutineChecks struct{ s *Store }

func checkKey(userID, routineID int64, date string) string {
	return fmt.Sprintf("%d/%d/%s", userID, routineID, date)
}

func (c *RoutineChecks) Set(ctx context.Context, check *models.RoutineCheck) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	cp := *check
	c.s.checks[checkKey(check.UserID, check.RoutineID, check.Date)] = &cp
	return nil
}

func (c *RoutineChecks) Get(ctx context.Context, userID, routineID int64, date string) (*models.RoutineCheck, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if check, ok := c.s.checks[checkKey(userID, routineID, date)]; ok {
		cp := *check
		return &cp, nil
	}
	return &models.RoutineCheck{UserID: userID, RoutineID: routineID, Date: date}, nil
}

func (c *RoutineChecks) GetByDateRange(ctx context.Context, userID int64, from, to string) ([]*models.RoutineCheck, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	var out []*models.RoutineCheck
	for _, check := range c.s.checks {
		if check.UserID == userID && check.Date >= from && check.Date <= to {
			cp := *check
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].RoutineID < out[j].RoutineID
	})
	return out, nil
}

type Todos struct{ s *Store }

func (t *Todos) Create(ctx context.Context, todo *models.Todo) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	todo.TodoID = t.s.id()
	todo.CreatedAt = time.Now()
	cp := *todo
	t.s.todos[todo.TodoID] = &cp
	return nil
}

func (t *Todos) list(keep func(*models.Todo) bool) []*models.Todo {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	var out []*models.Todo
	for _, todo := range t.s.todos {
		if keep(todo) {
			cp := *todo
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TodoID < out[j].TodoID })
	return out
}

func (t *Todos) GetByUserID(ctx context.Context, userID int64, includeCompleted bool) ([]*models.Todo, error) {
	return t.list(func(todo *models.Todo) bool {
		return todo.UserID == userID && (includeCompleted || !todo.IsCompleted())
	}), nil
}

func (t *Todos) GetByDate(ctx context.Context, userID int64, date string) ([]*models.Todo, error) {
	return t.list(func(todo *models.Todo) bool {
		return todo.UserID == userID && todo.Date != nil && *todo.Date == date
	}), nil
}

func (t *Todos) GetByID(ctx context.Context, todoID, userID int64) (*models.Todo, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	todo, ok := t.s.todos[todoID]
	if !ok || todo.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *todo
	return &cp, nil
}

func (t *Todos) Complete(ctx context.Context, todoID, userID int64, at time.Time, eventID *int64) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	todo, ok := t.s.todos[todoID]
	if !ok || todo.UserID != userID {
		return repository.ErrNotFound
	}
	todo.CompletedAt = &at
	todo.EventID = eventID
	return nil
}

func (t *Todos) Delete(ctx context.Context, todoID, userID int64) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	todo, ok := t.s.todos[todoID]
	if !ok || todo.UserID != userID {
		return repository.ErrNotFound
	}
	delete(t.s.todos, todoID)
	return nil
}

type DailyNotes struct{ s *Store }

func noteKey(userID int64, date string) string {
	return fmt.Sprintf("%d/%s", userID, date)
}

func (n *DailyNotes) Get(ctx context.Context, userID int64, date string) (*models.DailyNote, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()

	note, ok := n.s.notes[noteKey(userID, date)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *note
	return &cp, nil
}

func (n *DailyNotes) Upsert(ctx context.Context, note *models.DailyNote) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()

	note.UpdatedAt = time.Now()
	cp := *note
	n.s.notes[noteKey(note.UserID, note.Date)] = &cp
	return nil
}

type Imports struct{ s *Store }

func (i *Imports) Create(ctx context.Context, imp *models.ICSImport) error {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()

	imp.CreatedAt = time.Now()
	cp := *imp
	i.s.imports[imp.ImportID] = &cp
	return nil
}

func (i *Imports) GetBySource(ctx context.Context, userID int64, source string) ([]*models.ICSImport, error) {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()

	var out []*models.ICSImport
	for _, imp := range i.s.imports {
		if imp.UserID == userID && imp.Source == source {
			cp := *imp
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.Before(out[b].CreatedAt) })
	return out, nil
}

func (i *Imports) Delete(ctx context.Context, importID string, userID int64) error {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()

	imp, ok := i.s.imports[importID]
	if !ok || imp.UserID != userID {
		return repository.ErrNotFound
	}
	delete(i.s.imports, importID)
	return nil
}

type UserSettings struct{ s *Store }

func (u *UserSettings) GetOrCreate(ctx context.Context, userID int64) (*models.UserSettings, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	settings, ok := u.s.settings[userID]
	if !ok {
		settings = models.NewDefaultUserSettings(userID)
		u.s.settings[userID] = settings
	}
	cp := *settings
	return &cp, nil
}

func (u *UserSettings) Update(ctx context.Context, settings *models.UserSettings) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	cp := *settings
	u.s.settings[settings.UserID] = &cp
	return nil
}

func (u *UserSettings) GetByTelegramChatID(ctx context.Context, chatID int64) (*models.UserSettings, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	var found *models.UserSettings
	for _, settings := range u.s.settings {
		if settings.TelegramChatID == nil || *settings.TelegramChatID != chatID {
			continue
		}
		if found == nil || settings.UpdatedAt.After(found.UpdatedAt) {
			found = settings
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	cp := *found
	return &cp, nil
}

func (u *UserSettings) GetAllWithDailySummaryEnabled(ctx context.Context) ([]*models.UserSettings, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	var out []*models.UserSettings
	for _, settings := range u.s.settings {
		if settings.DailySummaryEnabled && settings.TelegramChatID != nil {
			cp := *settings
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (u *UserSettings) SetLastDailySummaryDate(ctx context.Context, userID int64, date string) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	settings, ok := u.s.settings[userID]
	if !ok {
		return repository.ErrNotFound
	}
	settings.LastDailySummaryDate = &date
	return nil
}
