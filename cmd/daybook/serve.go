package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hray3182/daybook/internal/ai"
	"github.com/hray3182/daybook/internal/bot"
	"github.com/hray3182/daybook/internal/config"
	"github.com/hray3182/daybook/internal/ics"
	"github.com/hray3182/daybook/internal/models"
	"github.com/hray3182/daybook/internal/scheduler"
	"github.com/hray3182/daybook/internal/web"
)

func addServe(root *cobra.Command) {
	var inMemory bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the Telegram bot and the background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cfg, inMemory)
		},
	}
	cmd.Flags().BoolVar(&inMemory, "memory", false, "Keep data in memory instead of PostgreSQL.")

	root.AddCommand(cmd)
}

func serve(cfg *config.Config, inMemory bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	be, err := openBackend(ctx, cfg, inMemory)
	if err != nil {
		return err
	}
	defer be.close()

	auth, err := web.NewAuth(cfg.JWTSecret)
	if err != nil {
		return err
	}

	// Initialize AI client (optional)
	var advisor web.Advisor
	if cfg.AIAPIKey != "" {
		advisor = ai.New(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
		log.Printf("AI client initialized (model: %s)", cfg.AIModel)
	} else {
		log.Println("AI client not configured, day feedback disabled")
	}

	var notifier scheduler.Notifier
	if cfg.TelegramToken != "" {
		verify := func(token string) (int64, error) {
			claims, err := auth.Parse(token)
			if err != nil {
				return 0, err
			}
			return claims.UserID, nil
		}
		b, err := bot.New(cfg.TelegramToken, be.planner, be.settings, verify)
		if err != nil {
			return err
		}
		notifier = b
		go func() {
			if err := b.Start(ctx); err != nil && err != context.Canceled {
				log.Printf("Bot error: %v", err)
			}
		}()
	} else {
		log.Println("TELEGRAM_TOKEN not set, daily summaries disabled")
	}

	var (
		fetcher scheduler.Fetcher
		subs    []models.ICSSubscription
	)
	if cfg.ICSSubscriptionsFile != "" {
		subs, err = config.LoadSubscriptions(cfg.ICSSubscriptionsFile)
		if err != nil {
			return err
		}
		f, err := ics.NewFetcher(cfg.ICSCacheDir)
		if err != nil {
			return err
		}
		fetcher = f
		log.Printf("Loaded %d calendar subscriptions", len(subs))
	}

	sched := scheduler.New(be.planner, be.settings, notifier, fetcher, scheduler.Config{
		RefreshSpec:   cfg.ICSRefreshCron,
		Subscriptions: subs,
		Purge:         be.days.Purge,
	})
	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		if err := sched.Start(ctx); err != nil {
			log.Printf("Scheduler error: %v", err)
			cancel()
		}
	}()

	server := web.New(be.planner, advisor, auth)
	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		if err := server.Shutdown(); err != nil {
			log.Printf("Failed to shut down server: %v", err)
		}
	}()

	log.Printf("Listening on %s", cfg.ListenAddr)
	err = server.Listen(cfg.ListenAddr)
	cancel()
	<-schedDone
	return err
}
