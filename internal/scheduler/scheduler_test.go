package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hray3182/daybook/internal/cache"
	"github.com/hray3182/daybook/internal/format"
	"github.com/hray3182/daybook/internal/models"
	"github.com/hray3182/daybook/internal/planner"
	"github.com/hray3182/daybook/internal/repository/memory"
)

type sent struct {
	chatID int64
	msg    format.Message
}

type fakeNotifier struct {
	sent []sent
	err  error
}

func (f *fakeNotifier) Send(ctx context.Context, chatID int64, msg format.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sent{chatID, msg})
	return nil
}

type fakeFetcher struct {
	mu          sync.Mutex
	body        []byte
	cached      bool
	delay       time.Duration
	calls       int
	inFlight    int
	maxInFlight int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, bool, error) {
	f.mu.Lock()
	f.calls++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	body, cached := f.body, f.cached
	f.mu.Unlock()

	time.Sleep(f.delay)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
	return body, cached, nil
}

func gymCalendar(start, end string) []byte {
	return []byte(strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//daybook//test//EN",
		"BEGIN:VEVENT",
		"UID:gym@example.com",
		"DTSTAMP:20240301T000000Z",
		"DTSTART:20240306T" + start + "Z",
		"DTEND:20240306T" + end + "Z",
		"SUMMARY:Gym",
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\r\n") + "\r\n")
}

var gymSubs = []models.ICSSubscription{{Name: "gym", UserID: 1, URL: "https://example.com/gym.ics", IsPlan: true}}

func gymEvents(t *testing.T, store *memory.Store) []*models.Event {
	t.Helper()
	events, err := store.Events().GetByDateRange(context.Background(), 1, "2024-03-06", "2024-03-06")
	if err != nil {
		t.Fatalf("GetByDateRange: %v", err)
	}
	return events
}

func liveImports(t *testing.T, store *memory.Store) int {
	t.Helper()
	imports, err := store.Imports().GetBySource(context.Background(), 1, "gym")
	if err != nil {
		t.Fatalf("GetBySource: %v", err)
	}
	return len(imports)
}

func newTestScheduler(t *testing.T, notifier Notifier, fetcher Fetcher, subs []models.ICSSubscription) (*Scheduler, *planner.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := planner.New(planner.Stores{
		Users:      store.Users(),
		Events:     store.Events(),
		Categories: store.Categories(),
		Routines:   store.Routines(),
		Checks:     store.Checks(),
		Todos:      store.Todos(),
		Notes:      store.Notes(),
		Imports:    store.Imports(),
		Settings:   store.Settings(),
	}, cache.Noop[*planner.DayView]{}, time.UTC)

	s := New(svc, store.Settings(), notifier, fetcher, Config{Subscriptions: subs})
	s.now = func() time.Time { return time.Date(2024, 3, 6, 7, 30, 0, 0, time.UTC) }
	return s, svc, store
}

func linkChat(t *testing.T, store *memory.Store, userID, chatID int64) {
	t.Helper()
	settings := models.NewDefaultUserSettings(userID)
	settings.Timezone = "UTC"
	settings.TelegramChatID = &chatID
	if err := store.Settings().Update(context.Background(), settings); err != nil {
		t.Fatalf("Update settings: %v", err)
	}
}

func TestDailySummarySentOnce(t *testing.T) {
	ctx := context.Background()
	notifier := &fakeNotifier{}
	s, svc, store := newTestScheduler(t, notifier, nil, nil)
	linkChat(t, store, 1, 42)

	_, err := svc.CreateEvent(ctx, 1, models.Event{
		Date: "2024-03-06", StartTime: "09:00", EndTime: "10:00", Title: "회의", IsPlan: true,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	s.checkDailySummary(ctx)
	s.checkDailySummary(ctx)

	if len(notifier.sent) != 1 {
		t.Fatalf("expected one summary, got %d", len(notifier.sent))
	}
	got := notifier.sent[0]
	if got.chatID != 42 {
		t.Fatalf("sent to chat %d, want 42", got.chatID)
	}
	if !strings.Contains(got.msg.Text, "09:00-10:00 회의") {
		t.Fatalf("summary misses the plan item:\n%s", got.msg.Text)
	}

	settings, _ := store.Settings().GetOrCreate(ctx, 1)
	if settings.LastDailySummaryDate == nil || *settings.LastDailySummaryDate != "2024-03-06" {
		t.Fatalf("last summary date not recorded: %v", settings.LastDailySummaryDate)
	}
}

func TestDailySummaryWaitsForTime(t *testing.T) {
	notifier := &fakeNotifier{}
	s, _, store := newTestScheduler(t, notifier, nil, nil)
	linkChat(t, store, 1, 42)
	s.now = func() time.Time { return time.Date(2024, 3, 6, 6, 59, 0, 0, time.UTC) }

	s.checkDailySummary(context.Background())
	if len(notifier.sent) != 0 {
		t.Fatalf("summary sent before its time")
	}
}

func TestDailySummaryRetriesAfterSendFailure(t *testing.T) {
	ctx := context.Background()
	notifier := &fakeNotifier{err: errors.New("telegram down")}
	s, _, store := newTestScheduler(t, notifier, nil, nil)
	linkChat(t, store, 1, 42)

	s.checkDailySummary(ctx)
	settings, _ := store.Settings().GetOrCreate(ctx, 1)
	if settings.LastDailySummaryDate != nil {
		t.Fatalf("failed send must not mark the day as done")
	}

	notifier.err = nil
	s.checkDailySummary(ctx)
	if len(notifier.sent) != 1 {
		t.Fatalf("expected retry to send, got %d", len(notifier.sent))
	}
}

func TestRefreshSubscriptionsReplacesEvents(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{body: gymCalendar("180000", "190000")}
	s, _, store := newTestScheduler(t, nil, fetcher, gymSubs)

	s.refreshSubscriptions(ctx)
	fetcher.body = gymCalendar("183000", "193000")
	s.refreshSubscriptions(ctx)

	if fetcher.calls != 2 {
		t.Fatalf("expected 2 fetches, got %d", fetcher.calls)
	}
	events := gymEvents(t, store)
	if len(events) != 1 {
		t.Fatalf("expected refresh to replace the previous import, got %d events", len(events))
	}
	ev := events[0]
	if ev.Title != "Gym" || ev.StartTime != "18:30:00" || !ev.IsPlan {
		t.Fatalf("unexpected event %+v", ev)
	}
	if n := liveImports(t, store); n != 1 {
		t.Fatalf("expected one live import, got %d", n)
	}
}

func TestRefreshKeepsEditsWhenCalendarUnchanged(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{body: gymCalendar("180000", "190000")}
	s, svc, store := newTestScheduler(t, nil, fetcher, gymSubs)

	s.refreshSubscriptions(ctx)
	events := gymEvents(t, store)
	if len(events) != 1 {
		t.Fatalf("expected one imported event, got %d", len(events))
	}
	id := events[0].EventID

	start, end := "20:00", "21:00"
	if _, err := svc.UpdateEvent(ctx, 1, id, models.EventPatch{StartTime: &start, EndTime: &end}); err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}

	fetcher.cached = true
	s.refreshSubscriptions(ctx)

	events = gymEvents(t, store)
	if len(events) != 1 {
		t.Fatalf("expected one event after cached refresh, got %d", len(events))
	}
	if events[0].EventID != id || events[0].StartTime != "20:00:00" {
		t.Fatalf("edit lost on cached refresh: %+v", events[0])
	}
	if n := liveImports(t, store); n != 1 {
		t.Fatalf("expected one live import, got %d", n)
	}
}

func TestRefreshImportsCachedCopyWhenNothingImported(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{body: gymCalendar("180000", "190000"), cached: true}
	s, _, store := newTestScheduler(t, nil, fetcher, gymSubs)

	s.refreshSubscriptions(ctx)

	if events := gymEvents(t, store); len(events) != 1 {
		t.Fatalf("expected cached copy to be imported, got %d events", len(events))
	}
	if n := liveImports(t, store); n != 1 {
		t.Fatalf("expected one live import, got %d", n)
	}
}

func TestRefreshSubscriptionsRunOneAtATime(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{body: gymCalendar("180000", "190000"), delay: 20 * time.Millisecond}
	s, _, store := newTestScheduler(t, nil, fetcher, gymSubs)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.refreshSubscriptions(ctx)
		}()
	}
	wg.Wait()

	if fetcher.calls != 4 {
		t.Fatalf("expected 4 fetches, got %d", fetcher.calls)
	}
	if fetcher.maxInFlight != 1 {
		t.Fatalf("refreshes overlapped: %d in flight", fetcher.maxInFlight)
	}
	if events := gymEvents(t, store); len(events) != 1 {
		t.Fatalf("expected one event after concurrent refreshes, got %d", len(events))
	}
	if n := liveImports(t, store); n != 1 {
		t.Fatalf("expected one live import, got %d", n)
	}
}

func TestStartStopsWithContext(t *testing.T) {
	s, _, _ := newTestScheduler(t, &fakeNotifier{}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	s, _, _ := newTestScheduler(t, &fakeNotifier{}, nil, nil)
	s.cfg.SummarySpec = "every now and then"
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected invalid cron spec to fail")
	}
}

func TestPurgeCache(t *testing.T) {
	purged := 0
	s, _, _ := newTestScheduler(t, nil, nil, nil)
	s.cfg.Purge = func() int { purged++; return 3 }

	s.purgeCache()
	if purged != 1 {
		t.Fatalf("expected one purge, got %d", purged)
	}
}
