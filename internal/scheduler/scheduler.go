// Package scheduler runs the background jobs: the morning summary sent to
// linked chats and the periodic refresh of subscribed calendars.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hray3182/daybook/internal/format"
	"github.com/hray3182/daybook/internal/ics"
	"github.com/hray3182/daybook/internal/models"
	"github.com/hray3182/daybook/internal/planner"
)

// Notifier delivers a message to a chat.
type Notifier interface {
	Send(ctx context.Context, chatID int64, msg format.Message) error
}

// Fetcher downloads a calendar body; fromCache reports a stale copy.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (body []byte, fromCache bool, err error)
}

type Planner interface {
	Location() *time.Location
	Day(ctx context.Context, userID int64, date string) (*planner.DayView, error)
	ReplaceSource(ctx context.Context, userID int64, source string, isPlan bool, events []models.Event) (*models.ICSImport, error)
	HasImports(ctx context.Context, userID int64, source string) (bool, error)
}

type SettingsStore interface {
	GetAllWithDailySummaryEnabled(ctx context.Context) ([]*models.UserSettings, error)
	SetLastDailySummaryDate(ctx context.Context, userID int64, date string) error
}

// Config selects which jobs run. A nil Notifier disables the summary and an
// empty subscription list disables the calendar refresh. Purge, when set,
// drops expired cache entries every PurgeSpec.
type Config struct {
	SummarySpec   string
	RefreshSpec   string
	PurgeSpec     string
	Subscriptions []models.ICSSubscription
	Purge         func() int
}

type Scheduler struct {
	planner  Planner
	settings SettingsStore
	notifier Notifier
	fetcher  Fetcher
	cfg      Config
	cron     *cron.Cron
	now      func() time.Time
	notifyCh chan struct{}

	// refreshMu keeps cron and Notify refreshes from running at once.
	refreshMu sync.Mutex
}

func New(p Planner, settings SettingsStore, notifier Notifier, fetcher Fetcher, cfg Config) *Scheduler {
	if cfg.SummarySpec == "" {
		cfg.SummarySpec = "@every 1m"
	}
	if cfg.RefreshSpec == "" {
		cfg.RefreshSpec = "*/30 * * * *"
	}
	if cfg.PurgeSpec == "" {
		cfg.PurgeSpec = "@every 10m"
	}
	return &Scheduler{
		planner:  p,
		settings: settings,
		notifier: notifier,
		fetcher:  fetcher,
		cfg:      cfg,
		cron:     cron.New(cron.WithLocation(p.Location())),
		now:      time.Now,
		notifyCh: make(chan struct{}, 1),
	}
}

// Notify triggers an immediate calendar refresh. Non-blocking if one is
// already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// Start registers the jobs and blocks until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.notifier != nil {
		if _, err := s.cron.AddFunc(s.cfg.SummarySpec, func() { s.checkDailySummary(ctx) }); err != nil {
			return fmt.Errorf("failed to schedule daily summary: %w", err)
		}
	}
	if s.cfg.Purge != nil {
		if _, err := s.cron.AddFunc(s.cfg.PurgeSpec, s.purgeCache); err != nil {
			return fmt.Errorf("failed to schedule cache purge: %w", err)
		}
	}
	refresh := s.fetcher != nil && len(s.cfg.Subscriptions) > 0
	if refresh {
		if _, err := s.cron.AddFunc(s.cfg.RefreshSpec, func() { s.refreshSubscriptions(ctx) }); err != nil {
			return fmt.Errorf("failed to schedule calendar refresh: %w", err)
		}
	}

	s.cron.Start()
	log.Printf("Scheduler started with %d jobs", len(s.cron.Entries()))

	if refresh {
		s.Notify()
	}
	for {
		select {
		case <-ctx.Done():
			<-s.cron.Stop().Done()
			log.Println("Scheduler stopped")
			return nil
		case <-s.notifyCh:
			if refresh {
				s.refreshSubscriptions(ctx)
			}
		}
	}
}

func (s *Scheduler) checkDailySummary(ctx context.Context) {
	now := s.now()

	all, err := s.settings.GetAllWithDailySummaryEnabled(ctx)
	if err != nil {
		log.Printf("Failed to get users with daily summary enabled: %v", err)
		return
	}

	for _, settings := range all {
		s.sendDailySummaryIfNeeded(ctx, settings, now)
	}
}

func (s *Scheduler) sendDailySummaryIfNeeded(ctx context.Context, settings *models.UserSettings, now time.Time) {
	if !settings.ShouldSendDailySummary(now) {
		return
	}

	localNow := now.In(settings.Location())
	today := localNow.Format("2006-01-02")

	view, err := s.planner.Day(ctx, settings.UserID, today)
	if err != nil {
		log.Printf("Failed to resolve day %s for %d: %v", today, settings.UserID, err)
		return
	}

	msg := format.DailySummary(view, localNow)
	if err := s.notifier.Send(ctx, *settings.TelegramChatID, msg); err != nil {
		log.Printf("Failed to send daily summary to %d: %v", settings.UserID, err)
		return
	}

	if err := s.settings.SetLastDailySummaryDate(ctx, settings.UserID, today); err != nil {
		log.Printf("Failed to update last daily summary date for %d: %v", settings.UserID, err)
	}

	log.Printf("Sent daily summary to user %d", settings.UserID)
}

func (s *Scheduler) purgeCache() {
	if n := s.cfg.Purge(); n > 0 {
		log.Printf("Purged %d expired day views", n)
	}
}

func (s *Scheduler) refreshSubscriptions(ctx context.Context) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	for _, sub := range s.cfg.Subscriptions {
		if ctx.Err() != nil {
			return
		}
		if err := s.refresh(ctx, sub); err != nil {
			log.Printf("Failed to refresh calendar %s for %d: %v", sub.Name, sub.UserID, err)
		}
	}
}

func (s *Scheduler) refresh(ctx context.Context, sub models.ICSSubscription) error {
	body, fromCache, err := s.fetcher.Fetch(ctx, sub.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch: %w", err)
	}
	if fromCache {
		// Re-importing the same copy would undo edits made since the last import.
		imported, err := s.planner.HasImports(ctx, sub.UserID, sub.Name)
		if err != nil {
			return err
		}
		if imported {
			log.Printf("Calendar %s unchanged or unreachable, keeping current events", sub.Name)
			return nil
		}
		log.Printf("Calendar %s unchanged or unreachable, importing cached copy", sub.Name)
	}

	from, to := ics.Window(s.now())
	events, err := ics.Events(body, from, to, s.planner.Location(), sub.IsPlan)
	if err != nil {
		return fmt.Errorf("failed to read calendar: %w", err)
	}

	imp, err := s.planner.ReplaceSource(ctx, sub.UserID, sub.Name, sub.IsPlan, events)
	if err != nil {
		return err
	}
	log.Printf("Refreshed calendar %s for user %d (%d events)", sub.Name, sub.UserID, imp.EventCount)
	return nil
}
