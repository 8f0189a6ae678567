package repository

import (
	"context"

	"github.com/hray3182/daybook/internal/database"
	"github.com/hray3182/daybook/internal/models"
)

type DailyNoteRepository struct {
	db *database.DB
}

func NewDailyNoteRepository(db *database.DB) *DailyNoteRepository {
	return &DailyNoteRepository{db: db}
}

func (r *DailyNoteRepository) Get(ctx context.Context, userID int64, date string) (*models.DailyNote, error) {
	note := &models.DailyNote{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT user_id, date::text, mood, mood_emoji, reflection, updated_at
		 FROM daily_note WHERE user_id = $1 AND date = $2::date`,
		userID, date,
	).Scan(&note.UserID, &note.Date, &note.Mood, &note.MoodEmoji, &note.Reflection, &note.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return note, nil
}

// Upsert writes the note for its date, replacing any previous one.
func (r *DailyNoteRepository) Upsert(ctx context.Context, note *models.DailyNote) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO daily_note (user_id, date, mood, mood_emoji, reflection)
		 VALUES ($1, $2::date, $3, $4, $5)
		 ON CONFLICT (user_id, date) DO UPDATE SET
		    mood = EXCLUDED.mood,
		    mood_emoji = EXCLUDED.mood_emoji,
		    reflection = EXCLUDED.reflection,
		    updated_at = NOW()
		 RETURNING updated_at`,
		note.UserID, note.Date, note.Mood, note.MoodEmoji, note.Reflection,
	).Scan(&note.UpdatedAt)
}
