package planner

import (
	"context"
	"errors"
	"fmt"

	"github.com/hray3182/daybook/internal/models"
	"github.com/hray3182/daybook/internal/repository"
)

const maxMood = 5

// GetNote returns the note of date, or an empty note when none was written.
func (s *Service) GetNote(ctx context.Context, userID int64, date string) (*models.DailyNote, error) {
	if _, err := parseDate(date); err != nil {
		return nil, err
	}
	note, err := s.stores.Notes.Get(ctx, userID, date)
	if errors.Is(err, repository.ErrNotFound) {
		return &models.DailyNote{UserID: userID, Date: date}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily note: %w", err)
	}
	return note, nil
}

// SaveNote writes the mood and reflection of date.
func (s *Service) SaveNote(ctx context.Context, userID int64, note models.DailyNote) (*models.DailyNote, error) {
	if _, err := parseDate(note.Date); err != nil {
		return nil, err
	}
	if note.Mood < 0 || note.Mood > maxMood {
		return nil, fmt.Errorf("%w: mood must be between 0 and %d", ErrInvalidInput, maxMood)
	}
	note.UserID = userID
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.stores.Notes.Upsert(ctx, &note); err != nil {
		return nil, fmt.Errorf("failed to save daily note: %w", err)
	}
	s.forget(userID, note.Date)
	return &note, nil
}
