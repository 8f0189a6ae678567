package models

import "time"

// ICSSubscription is a remote calendar imported into one user's day.
type ICSSubscription struct {
	Name   string `yaml:"name" json:"name"`
	UserID int64  `yaml:"user_id" json:"user_id"`
	URL    string `yaml:"url" json:"url"`
	IsPlan bool   `yaml:"plan" json:"is_plan"`
}

// ICSImport records one batch of events created from a calendar file.
type ICSImport struct {
	ImportID   string    `json:"id"`
	UserID     int64     `json:"user_id"`
	Source     string    `json:"source"`
	IsPlan     bool      `json:"is_plan"`
	EventCount int       `json:"event_count"`
	CreatedAt  time.Time `json:"created_at"`
}
