package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/hray3182/daybook/internal/layout"
	"github.com/hray3182/daybook/internal/models"
	"github.com/hray3182/daybook/internal/repository"
)

const user = int64(1)

func mustCreate(t *testing.T, s *Service, ev models.Event) *models.Event {
	t.Helper()
	saved, err := s.CreateEvent(context.Background(), user, ev)
	if err != nil {
		t.Fatalf("failed to create event %+v: %v", ev, err)
	}
	return saved
}

func TestDayResolvesColumnsAndWake(t *testing.T) {
	ctx := context.Background()
	m := newMemory()
	s := newTestService(m)

	sleep := mustCreate(t, s, models.Event{Date: "2024-03-05", StartTime: "23:00", EndTime: "07:00", Title: "잠", IsSleep: true})
	b := mustCreate(t, s, models.Event{Date: "2024-03-06", StartTime: "09:00", EndTime: "10:00", Title: "b"})
	c := mustCreate(t, s, models.Event{Date: "2024-03-06", StartTime: "09:30", EndTime: "11:00", Title: "c"})
	d := mustCreate(t, s, models.Event{Date: "2024-03-06", StartTime: "10:30", EndTime: "10:45", Title: "d"})
	mustCreate(t, s, models.Event{Date: "2024-03-06", StartTime: "08:00", EndTime: "09:00", Title: "plan", IsPlan: true})
	mustCreate(t, s, models.Event{Date: "2024-03-04", StartTime: "10:00", EndTime: "11:00", Title: "old"})

	routine, err := s.CreateRoutine(ctx, user, models.Routine{Text: "stretch", ScheduledTime: "07:00", Duration: 30, Weekdays: models.Weekdays{3}})
	if err != nil {
		t.Fatalf("failed to create routine: %v", err)
	}

	view, err := s.Day(ctx, user, "2024-03-06")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(view.Actual) != 4 {
		t.Fatalf("expected 4 actual items, got %+v", view.Actual)
	}
	first := view.Actual[0]
	if first.Event.EventID != sleep.EventID || first.StartMinute != 0 || first.EndMinute != 420 || !first.ContinuesFromPrevious {
		t.Fatalf("overnight sleep should open the day, got %+v", first)
	}
	want := map[int64][2]int{sleep.EventID: {0, 1}, b.EventID: {0, 2}, c.EventID: {1, 2}, d.EventID: {0, 2}}
	for _, it := range view.Actual {
		w := want[it.Event.EventID]
		if it.Column != w[0] || it.Columns != w[1] {
			t.Fatalf("event %s: column %d of %d, want %d of %d", it.Event.Title, it.Column, it.Columns, w[0], w[1])
		}
	}

	if len(view.Plan) != 2 {
		t.Fatalf("expected routine and plan event, got %+v", view.Plan)
	}
	if !view.Plan[0].Virtual || *view.Plan[0].Event.RoutineID != routine.RoutineID || view.Plan[0].Event.EndTime != "07:30:00" {
		t.Fatalf("routine should be projected first, got %+v", view.Plan[0])
	}

	if view.WakeSleep.WakeTime != "07:00" || view.WakeSleep.HasSleep() {
		t.Fatalf("unexpected wake/sleep %+v", view.WakeSleep)
	}
	if len(view.Routines) != 1 || view.Routines[0].Checked {
		t.Fatalf("unexpected routine status %+v", view.Routines)
	}
	if view.Note != nil {
		t.Fatalf("no note was written")
	}
}

func TestDayInvalidDate(t *testing.T) {
	s := newTestService(newMemory())
	if _, err := s.Day(context.Background(), user, "2024-13-01"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestDayCacheInvalidation(t *testing.T) {
	ctx := context.Background()
	m := newMemory()
	s := newTestService(m)

	s.Day(ctx, user, "2024-03-06")
	s.Day(ctx, user, "2024-03-06")
	if m.events.reads != 1 {
		t.Fatalf("second read should hit the cache, got %d reads", m.events.reads)
	}

	mustCreate(t, s, models.Event{Date: "2024-03-20", StartTime: "09:00", EndTime: "10:00"})
	s.Day(ctx, user, "2024-03-06")
	if m.events.reads != 1 {
		t.Fatalf("unrelated date should keep the cache, got %d reads", m.events.reads)
	}

	// An overnight event on the previous day spills into the cached day.
	mustCreate(t, s, models.Event{Date: "2024-03-05", StartTime: "23:00", EndTime: "01:00"})
	view, _ := s.Day(ctx, user, "2024-03-06")
	if m.events.reads != 2 || len(view.Actual) != 1 {
		t.Fatalf("previous day change should invalidate, reads %d, items %+v", m.events.reads, view.Actual)
	}

	s.CreateRoutine(ctx, user, models.Routine{Text: "walk", ScheduledTime: "18:00"})
	view, _ = s.Day(ctx, user, "2024-03-06")
	if m.events.reads != 3 || len(view.Plan) != 1 {
		t.Fatalf("routine change should invalidate every day, reads %d", m.events.reads)
	}
}

func TestCreateEventValidation(t *testing.T) {
	s := newTestService(newMemory())
	ctx := context.Background()

	cases := []models.Event{
		{Date: "2024-03-06", StartTime: "09:00", EndTime: "09:00"},
		{Date: "2024-03-06", StartTime: "25:00", EndTime: "09:00"},
		{Date: "2024-03-06", StartTime: "09:00", EndTime: "nine"},
	}
	for _, ev := range cases {
		if _, err := s.CreateEvent(ctx, user, ev); !errors.Is(err, ErrInvalidInterval) {
			t.Fatalf("expected ErrInvalidInterval for %+v, got %v", ev, err)
		}
	}
	if _, err := s.CreateEvent(ctx, user, models.Event{Date: "03/06/2024", StartTime: "09:00", EndTime: "10:00"}); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestUpdateEventMovesDateAndInvalidatesBoth(t *testing.T) {
	ctx := context.Background()
	m := newMemory()
	s := newTestService(m)
	ev := mustCreate(t, s, models.Event{Date: "2024-03-06", StartTime: "09:00", EndTime: "10:00"})

	s.Day(ctx, user, "2024-03-06")
	s.Day(ctx, user, "2024-03-10")

	date := "2024-03-10"
	updated, err := s.UpdateEvent(ctx, user, ev.EventID, models.EventPatch{Date: &date})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Date != date {
		t.Fatalf("date not updated: %+v", updated)
	}

	old, _ := s.Day(ctx, user, "2024-03-06")
	moved, _ := s.Day(ctx, user, "2024-03-10")
	if len(old.Actual) != 0 || len(moved.Actual) != 1 {
		t.Fatalf("both days should be refreshed, old %+v new %+v", old.Actual, moved.Actual)
	}

	if _, err := s.UpdateEvent(ctx, user, 999, models.EventPatch{Date: &date}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCommitGestureCreatePushesAfter(t *testing.T) {
	ctx := context.Background()
	s := newTestService(newMemory())
	mustCreate(t, s, models.Event{Date: "2024-03-06", StartTime: "09:00", EndTime: "10:00"})
	mustCreate(t, s, models.Event{Date: "2024-03-06", StartTime: "09:00", EndTime: "12:00", IsPlan: true})

	p := layout.Proposal{Kind: layout.ProposalCreate, Column: layout.ColumnActual, StartMinute: 540, EndMinute: 600}
	created, err := s.CommitGesture(ctx, user, "2024-03-06", p, models.Event{Title: "reading"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.StartTime != "10:00:00" || created.EndTime != "11:00:00" || created.IsPlan || created.Title != "reading" {
		t.Fatalf("create should be pushed after the overlap, got %+v", created)
	}

	short := layout.Proposal{Kind: layout.ProposalCreate, StartMinute: 122, EndMinute: 128}
	if _, err := s.CommitGesture(ctx, user, "2024-03-06", short, models.Event{}); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestCommitGestureMoveFromPreviousDay(t *testing.T) {
	ctx := context.Background()
	s := newTestService(newMemory())
	ev := mustCreate(t, s, models.Event{Date: "2024-03-05", StartTime: "23:00", EndTime: "01:00"})

	resize := layout.Proposal{Kind: layout.ProposalResizeStart, EventID: ev.EventID, StartMinute: -30, EndMinute: 60}
	if _, err := s.CommitGesture(ctx, user, "2024-03-06", resize, models.Event{}); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected top resize above midnight to fail, got %v", err)
	}

	move := layout.Proposal{Kind: layout.ProposalMove, EventID: ev.EventID, StartMinute: 0, EndMinute: 120}
	moved, err := s.CommitGesture(ctx, user, "2024-03-06", move, models.Event{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if moved.Date != "2024-03-06" || moved.StartTime != "00:00:00" || moved.EndTime != "02:00:00" {
		t.Fatalf("unexpected moved event %+v", moved)
	}

	end := layout.Proposal{Kind: layout.ProposalResizeEnd, EventID: ev.EventID, StartMinute: 0, EndMinute: 1500}
	if _, err := s.CommitGesture(ctx, user, "2024-03-06", end, models.Event{}); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected a resize beyond the day cap to fail, got %v", err)
	}
}

func TestCommitGestureFailureKeepsStoredEvent(t *testing.T) {
	ctx := context.Background()
	m := newMemory()
	s := newTestService(m)
	ev := mustCreate(t, s, models.Event{Date: "2024-03-06", StartTime: "09:00", EndTime: "10:00"})
	m.events.failUpdate = errBoom

	move := layout.Proposal{Kind: layout.ProposalMove, EventID: ev.EventID, StartMinute: 600, EndMinute: 660}
	if _, err := s.CommitGesture(ctx, user, "2024-03-06", move, models.Event{}); !errors.Is(err, errBoom) {
		t.Fatalf("expected store error, got %v", err)
	}
	stored, _ := s.GetEvent(ctx, user, ev.EventID)
	if stored.StartTime != "09:00:00" {
		t.Fatalf("failed move should leave the event alone, got %+v", stored)
	}

	missing := layout.Proposal{Kind: layout.ProposalMove, EventID: 404, StartMinute: 600, EndMinute: 660}
	if _, err := s.CommitGesture(ctx, user, "2024-03-06", missing, models.Event{}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCompleteTodoPromotes(t *testing.T) {
	ctx := context.Background()
	m := newMemory()
	s := newTestService(m)
	date := "2024-03-06"
	todo, err := s.CreateTodo(ctx, user, models.Todo{Title: " write report ", Date: &date})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	done, err := s.CompleteTodo(ctx, user, todo.TodoID, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !done.IsCompleted() || done.EventID == nil {
		t.Fatalf("todo should be completed and promoted, got %+v", done)
	}
	ev, _ := s.GetEvent(ctx, user, *done.EventID)
	if ev.Date != "2024-03-06" || ev.StartTime != "14:30:00" || ev.EndTime != "15:00:00" || ev.Title != "write report" || ev.IsPlan {
		t.Fatalf("unexpected promoted event %+v", ev)
	}

	view, _ := s.Day(ctx, user, date)
	if len(view.Todos) != 1 || len(view.Actual) != 1 {
		t.Fatalf("day should show the todo and its event, got %+v", view)
	}
}

func TestRoutineCheckReadIsUnfiltered(t *testing.T) {
	ctx := context.Background()
	s := newTestService(newMemory())
	routine, err := s.CreateRoutine(ctx, user, models.Routine{Text: "gym", ScheduledTime: "18:00", Weekdays: models.Weekdays{1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 2024-03-06 is a Wednesday, the routine only runs on Mondays.
	if _, err := s.SetRoutineCheck(ctx, user, routine.RoutineID, "2024-03-06", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.SetRoutineCheck(ctx, user, routine.RoutineID, "2024-03-11", true)

	check, _ := s.GetRoutineCheck(ctx, user, routine.RoutineID, "2024-03-06")
	if !check.Checked {
		t.Fatalf("stored check should be returned regardless of schedule")
	}
	view, _ := s.Day(ctx, user, "2024-03-06")
	if len(view.Routines) != 0 {
		t.Fatalf("routine should not be listed on a day it does not run")
	}

	stats, err := s.Stats(ctx, user, "2024-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rs := stats.Routines[0]
	if stats.Days != 31 || rs.Scheduled != 4 || rs.Checked != 1 || rs.CheckedAnyDay != 2 {
		t.Fatalf("unexpected stats %+v", rs)
	}

	if _, err := s.SetRoutineCheck(ctx, user, 999, "2024-03-06", true); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRoutineValidation(t *testing.T) {
	s := newTestService(newMemory())
	ctx := context.Background()
	bad := []models.Routine{
		{Text: "", ScheduledTime: "07:00"},
		{Text: "x", ScheduledTime: "7am"},
		{Text: "x", ScheduledTime: "07:00", Weekdays: models.Weekdays{7}},
		{Text: "x", ScheduledTime: "07:00", Duration: 1440},
	}
	for _, r := range bad {
		if _, err := s.CreateRoutine(ctx, user, r); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", r, err)
		}
	}
	r, err := s.CreateRoutine(ctx, user, models.Routine{Text: "x", ScheduledTime: "7:05", Weekdays: models.Weekdays{5, 1, 5}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ScheduledTime != "07:05:00" || r.Duration != 10 || len(r.Weekdays) != 2 || r.Weekdays[0] != 1 {
		t.Fatalf("routine not normalized: %+v", r)
	}
}

func TestDeleteCategoryInUse(t *testing.T) {
	ctx := context.Background()
	s := newTestService(newMemory())
	cat, err := s.CreateCategory(ctx, user, models.Category{Name: "잠"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.Color == "" {
		t.Fatalf("default color should be set")
	}
	mustCreate(t, s, models.Event{Date: "2024-03-06", StartTime: "01:00", EndTime: "07:00", Title: "잠", CategoryID: &cat.CategoryID})

	if err := s.DeleteCategory(ctx, user, cat.CategoryID); !errors.Is(err, repository.ErrCategoryInUse) {
		t.Fatalf("expected ErrCategoryInUse, got %v", err)
	}

	// The title and category name together mark the block as sleep.
	ws, _ := s.WakeSleep(ctx, user, "2024-03-06")
	if ws.WakeTime != "07:00" {
		t.Fatalf("expected wake at 07:00, got %+v", ws)
	}
}

func TestSaveNote(t *testing.T) {
	ctx := context.Background()
	s := newTestService(newMemory())

	if _, err := s.SaveNote(ctx, user, models.DailyNote{Date: "2024-03-06", Mood: 9}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	empty, err := s.GetNote(ctx, user, "2024-03-06")
	if err != nil || empty.Reflection != "" || empty.Date != "2024-03-06" {
		t.Fatalf("expected empty note, got %+v %v", empty, err)
	}

	s.Day(ctx, user, "2024-03-06")
	if _, err := s.SaveNote(ctx, user, models.DailyNote{Date: "2024-03-06", Mood: 4, Reflection: "good"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	view, _ := s.Day(ctx, user, "2024-03-06")
	if view.Note == nil || view.Note.Mood != 4 {
		t.Fatalf("day should show the saved note, got %+v", view.Note)
	}
}

func TestImportAndUndo(t *testing.T) {
	ctx := context.Background()
	m := newMemory()
	s := newTestService(m)

	events := []models.Event{
		{Date: "2024-03-06", StartTime: "09:00:00", EndTime: "10:00:00", Title: "standup"},
		{Date: "2024-03-06", StartTime: "09:00:00", EndTime: "09:00:00", Title: "broken"},
	}
	imp, err := s.ImportEvents(ctx, user, "work.ics", true, events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored := m.allEvents(t)
	if imp.EventCount != 1 || len(stored) != 1 {
		t.Fatalf("invalid event should be skipped, got %d", imp.EventCount)
	}
	for _, ev := range stored {
		if !ev.IsPlan || ev.ImportID != imp.ImportID {
			t.Fatalf("imported event not tagged: %+v", ev)
		}
	}

	again, err := s.ReplaceSource(ctx, user, "work.ics", true, events[:1])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, imports := len(m.allEvents(t)), m.importsOf(t, "work.ics"); n != 1 || len(imports) != 1 {
		t.Fatalf("replace should drop the previous batch, events %d imports %d", n, len(imports))
	}

	if err := s.UndoImport(ctx, user, again.ImportID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.allEvents(t)) != 0 {
		t.Fatalf("undo should delete the batch")
	}
	if err := s.UndoImport(ctx, user, "not-a-uuid"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()
	s := newTestService(newMemory())

	settings, err := s.GetSettings(ctx, user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.Timezone != "Asia/Seoul" || settings.TelegramChatID != nil {
		t.Fatalf("unexpected defaults %+v", settings)
	}

	chat := int64(777)
	at := "7am"
	if _, err := s.UpdateSettings(ctx, user, SettingsPatch{DailySummaryTime: &at}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for %q, got %v", at, err)
	}
	at = "21:30"
	tz := "UTC"
	settings, err = s.UpdateSettings(ctx, user, SettingsPatch{TelegramChatID: &chat, DailySummaryTime: &at, Timezone: &tz})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *settings.TelegramChatID != 777 || settings.DailySummaryTime != "21:30" || settings.Timezone != "UTC" {
		t.Fatalf("settings not applied: %+v", settings)
	}

	zero := int64(0)
	settings, _ = s.UpdateSettings(ctx, user, SettingsPatch{TelegramChatID: &zero})
	if settings.TelegramChatID != nil {
		t.Fatalf("chat id 0 should unregister, got %v", *settings.TelegramChatID)
	}
}

func TestDayDropsEventEndingAtMidnight(t *testing.T) {
	ctx := context.Background()
	m := newMemory()
	s := newTestService(m)

	mustCreate(t, s, models.Event{Date: "2024-03-05", StartTime: "22:00", EndTime: "00:00", Title: "late"})

	view, err := s.Day(ctx, user, "2024-03-06")
	if err != nil {
		t.Fatalf("Day: %v", err)
	}
	if len(view.Actual) != 0 {
		t.Fatalf("event ending at midnight must not occupy the next day, got %+v", view.Actual)
	}

	view, err = s.Day(ctx, user, "2024-03-05")
	if err != nil {
		t.Fatalf("Day: %v", err)
	}
	if len(view.Actual) != 1 || view.Actual[0].StartMinute != 1320 || view.Actual[0].EndMinute != 1440 {
		t.Fatalf("expected 22:00-24:00 on its own day, got %+v", view.Actual)
	}
}

func TestDayNotCachedWhenWriteLandsDuringRead(t *testing.T) {
	ctx := context.Background()
	m := newMemory()
	s := newTestService(m)

	m.events.onRead = func() {
		m.events.onRead = nil
		mustCreate(t, s, models.Event{Date: "2024-03-06", StartTime: "09:00", EndTime: "10:00", Title: "late write"})
	}

	if _, err := s.Day(ctx, user, "2024-03-06"); err != nil {
		t.Fatalf("Day: %v", err)
	}
	view, err := s.Day(ctx, user, "2024-03-06")
	if err != nil {
		t.Fatalf("Day: %v", err)
	}
	if m.events.reads != 2 {
		t.Fatalf("view resolved during a write must not be cached, got %d reads", m.events.reads)
	}
	if len(view.Actual) != 1 || view.Actual[0].Event.Title != "late write" {
		t.Fatalf("expected the concurrent write to show, got %+v", view.Actual)
	}
}
