package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hray3182/daybook/internal/database"
	"github.com/hray3182/daybook/internal/models"
)

const settingsColumns = `user_id, timezone, telegram_chat_id, daily_summary_enabled,
	to_char(daily_summary_time, 'HH24:MI'), last_daily_summary_date::text, updated_at`

type UserSettingsRepository struct {
	db *database.DB
}

func NewUserSettingsRepository(db *database.DB) *UserSettingsRepository {
	return &UserSettingsRepository{db: db}
}

func scanSettings(row pgx.Row) (*models.UserSettings, error) {
	settings := &models.UserSettings{}
	err := row.Scan(
		&settings.UserID,
		&settings.Timezone,
		&settings.TelegramChatID,
		&settings.DailySummaryEnabled,
		&settings.DailySummaryTime,
		&settings.LastDailySummaryDate,
		&settings.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// GetOrCreate retrieves user settings, creating default settings if none exist
func (r *UserSettingsRepository) GetOrCreate(ctx context.Context, userID int64) (*models.UserSettings, error) {
	return scanSettings(r.db.Pool.QueryRow(ctx,
		`INSERT INTO user_settings (user_id) VALUES ($1)
		 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING `+settingsColumns,
		userID,
	))
}

// Update updates user settings
func (r *UserSettingsRepository) Update(ctx context.Context, settings *models.UserSettings) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE user_settings SET
		    timezone = $1,
		    telegram_chat_id = $2,
		    daily_summary_enabled = $3,
		    daily_summary_time = $4::time,
		    updated_at = $5
		 WHERE user_id = $6`,
		settings.Timezone,
		settings.TelegramChatID,
		settings.DailySummaryEnabled,
		settings.DailySummaryTime,
		time.Now(),
		settings.UserID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByTelegramChatID finds the settings linked to a Telegram chat
func (r *UserSettingsRepository) GetByTelegramChatID(ctx context.Context, chatID int64) (*models.UserSettings, error) {
	settings, err := scanSettings(r.db.Pool.QueryRow(ctx,
		`SELECT `+settingsColumns+` FROM user_settings WHERE telegram_chat_id = $1
		 ORDER BY updated_at DESC LIMIT 1`,
		chatID,
	))
	if err != nil {
		return nil, notFound(err)
	}
	return settings, nil
}

// GetAllWithDailySummaryEnabled returns the settings of every user with the
// daily summary switched on and a chat to deliver it to
func (r *UserSettingsRepository) GetAllWithDailySummaryEnabled(ctx context.Context) ([]*models.UserSettings, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+settingsColumns+` FROM user_settings
		 WHERE daily_summary_enabled = true AND telegram_chat_id IS NOT NULL`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []*models.UserSettings
	for rows.Next() {
		settings, err := scanSettings(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, settings)
	}
	return all, rows.Err()
}

// SetLastDailySummaryDate updates the last daily summary date
func (r *UserSettingsRepository) SetLastDailySummaryDate(ctx context.Context, userID int64, date string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE user_settings SET last_daily_summary_date = $1::date WHERE user_id = $2`,
		date, userID,
	)
	return err
}
