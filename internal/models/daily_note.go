package models

import "time"

// DailyNote holds the mood and free-form reflection written for one day.
type DailyNote struct {
	UserID     int64     `json:"user_id"`
	Date       string    `json:"date"`
	Mood       int       `json:"mood"` // 1 (worst) .. 5 (best), 0 = unset
	MoodEmoji  string    `json:"mood_emoji"`
	Reflection string    `json:"reflection"`
	UpdatedAt  time.Time `json:"updated_at"`
}
