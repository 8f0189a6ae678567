package models

import "time"

// User is the owner of all other records. Identity itself lives with the
// auth provider; only the id is stored here.
type User struct {
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
