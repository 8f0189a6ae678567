package models

import (
	"time"
)

// UserSettings represents per-user preferences for the daily summary
type UserSettings struct {
	UserID               int64     `json:"user_id"`
	Timezone             string    `json:"timezone"`
	TelegramChatID       *int64    `json:"telegram_chat_id"`
	DailySummaryEnabled  bool      `json:"daily_summary_enabled"`
	DailySummaryTime     string    `json:"daily_summary_time"` // HH:MM format
	LastDailySummaryDate *string   `json:"last_daily_summary_date"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// NewDefaultUserSettings creates a new UserSettings with default values
func NewDefaultUserSettings(userID int64) *UserSettings {
	return &UserSettings{
		UserID:              userID,
		Timezone:            "Asia/Seoul",
		DailySummaryEnabled: true,
		DailySummaryTime:    "07:00",
		UpdatedAt:           time.Now(),
	}
}

// Location resolves the configured timezone, falling back to time.Local
func (s *UserSettings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ShouldSendDailySummary checks if it's time to send the daily summary
func (s *UserSettings) ShouldSendDailySummary(now time.Time) bool {
	if !s.DailySummaryEnabled || s.TelegramChatID == nil {
		return false
	}

	localNow := now.In(s.Location())
	today := localNow.Format("2006-01-02")

	// Check if already sent today
	if s.LastDailySummaryDate != nil && *s.LastDailySummaryDate >= today {
		return false
	}

	// Check if current time is past the summary time
	summaryHour, summaryMin := parseTimeString(s.DailySummaryTime)
	summaryTime := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), summaryHour, summaryMin, 0, 0, localNow.Location())

	return !localNow.Before(summaryTime)
}

// parseTimeString parses "HH:MM" format to hours and minutes
func parseTimeString(timeStr string) (hour, min int) {
	t, err := time.Parse("15:04", timeStr)
	if err != nil {
		return 0, 0
	}
	return t.Hour(), t.Minute()
}
