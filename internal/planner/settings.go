package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/hray3182/daybook/internal/models"
)

// SettingsPatch carries the user settings to change. Nil fields are left
// alone.
type SettingsPatch struct {
	Timezone            *string `json:"timezone"`
	TelegramChatID      *int64  `json:"telegram_chat_id"`
	DailySummaryEnabled *bool   `json:"daily_summary_enabled"`
	DailySummaryTime    *string `json:"daily_summary_time"`
}

func (s *Service) GetSettings(ctx context.Context, userID int64) (*models.UserSettings, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	settings, err := s.stores.Settings.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings validates and stores a settings change. A chat id of 0
// unregisters the Telegram chat.
func (s *Service) UpdateSettings(ctx context.Context, userID int64, patch SettingsPatch) (*models.UserSettings, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.Timezone != nil {
		if _, err := time.LoadLocation(*patch.Timezone); err != nil || *patch.Timezone == "" {
			return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, *patch.Timezone)
		}
		settings.Timezone = *patch.Timezone
	}
	if patch.TelegramChatID != nil {
		if *patch.TelegramChatID == 0 {
			settings.TelegramChatID = nil
		} else {
			id := *patch.TelegramChatID
			settings.TelegramChatID = &id
		}
	}
	if patch.DailySummaryEnabled != nil {
		settings.DailySummaryEnabled = *patch.DailySummaryEnabled
	}
	if patch.DailySummaryTime != nil {
		t, err := time.Parse("15:04", *patch.DailySummaryTime)
		if err != nil {
			return nil, fmt.Errorf("%w: summary time %q is not HH:MM", ErrInvalidInput, *patch.DailySummaryTime)
		}
		settings.DailySummaryTime = t.Format("15:04")
	}

	settings.UpdatedAt = s.now()
	if err := s.stores.Settings.Update(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return settings, nil
}
