package main

import (
	"context"
	"fmt"
	"log"

	"github.com/hray3182/daybook/internal/bot"
	"github.com/hray3182/daybook/internal/cache"
	"github.com/hray3182/daybook/internal/config"
	"github.com/hray3182/daybook/internal/database"
	"github.com/hray3182/daybook/internal/planner"
	"github.com/hray3182/daybook/internal/repository"
	"github.com/hray3182/daybook/internal/repository/memory"
	"github.com/hray3182/daybook/internal/scheduler"
)

type settingsStore interface {
	planner.SettingsStore
	scheduler.SettingsStore
	bot.Chats
}

// backend is a planner wired to either PostgreSQL or the in-memory store.
type backend struct {
	planner  *planner.Service
	days     *cache.TTL[*planner.DayView]
	settings settingsStore
	close    func()
}

func openBackend(ctx context.Context, cfg *config.Config, inMemory bool) (*backend, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	days := cache.NewTTL[*planner.DayView](cfg.CacheTTL)

	if inMemory {
		log.Println("Using in-memory storage, data is lost on exit")
		store := memory.New()
		stores := planner.Stores{
			Users:      store.Users(),
			Events:     store.Events(),
			Categories: store.Categories(),
			Routines:   store.Routines(),
			Checks:     store.Checks(),
			Todos:      store.Todos(),
			Notes:      store.Notes(),
			Imports:    store.Imports(),
			Settings:   store.Settings(),
		}
		return &backend{
			planner:  planner.New(stores, days, loc),
			days:     days,
			settings: store.Settings(),
			close:    func() {},
		}, nil
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	settings := repository.NewUserSettingsRepository(db)
	stores := planner.Stores{
		Users:      repository.NewUserRepository(db),
		Events:     repository.NewEventRepository(db),
		Categories: repository.NewCategoryRepository(db),
		Routines:   repository.NewRoutineRepository(db),
		Checks:     repository.NewRoutineCheckRepository(db),
		Todos:      repository.NewTodoRepository(db),
		Notes:      repository.NewDailyNoteRepository(db),
		Imports:    repository.NewICSImportRepository(db),
		Settings:   settings,
	}
	return &backend{
		planner:  planner.New(stores, days, loc),
		days:     days,
		settings: settings,
		close:    db.Close,
	}, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("DATABASE_URI is required")
	}
	db, err := database.New(ctx, cfg.DatabaseURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Connected to database")
	return db, nil
}
