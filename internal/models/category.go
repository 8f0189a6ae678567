package models

type Category struct {
	CategoryID int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	Name       string `json:"name"`
	Color      string `json:"color"` // hex, e.g. #ff8800
}
