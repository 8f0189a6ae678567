package planner

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/hray3182/daybook/internal/models"
	"github.com/hray3182/daybook/internal/repository"
)

// ImportEvents stores events read from a calendar as one batch that can be
// undone with UndoImport.
func (s *Service) ImportEvents(ctx context.Context, userID int64, source string, isPlan bool, events []models.Event) (*models.ICSImport, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	imp := &models.ICSImport{
		ImportID: uuid.NewString(),
		UserID:   userID,
		Source:   source,
		IsPlan:   isPlan,
	}

	batch := make([]*models.Event, 0, len(events))
	var dates []string
	for i := range events {
		ev := events[i]
		ev.EventID = 0
		ev.UserID = userID
		ev.IsPlan = isPlan
		ev.ImportID = imp.ImportID
		if err := normalizeEvent(&ev); err != nil {
			log.Printf("Skipping imported event %q: %v", ev.Title, err)
			continue
		}
		batch = append(batch, &ev)
		dates = append(dates, ev.Date)
	}
	imp.EventCount = len(batch)

	if err := s.stores.Imports.Create(ctx, imp); err != nil {
		return nil, fmt.Errorf("failed to record import: %w", err)
	}
	if len(batch) > 0 {
		if err := s.stores.Events.CreateBatch(ctx, batch); err != nil {
			if delErr := s.stores.Imports.Delete(ctx, imp.ImportID, userID); delErr != nil {
				log.Printf("Failed to remove import record %s: %v", imp.ImportID, delErr)
			}
			return nil, fmt.Errorf("failed to store imported events: %w", err)
		}
	}
	s.invalidate(userID, dates...)
	return imp, nil
}

// UndoImport deletes every event created by an import.
func (s *Service) UndoImport(ctx context.Context, userID int64, importID string) error {
	if err := uuid.Validate(importID); err != nil {
		return fmt.Errorf("%w: import id %s", ErrInvalidInput, importID)
	}
	dates, err := s.stores.Events.DeleteByImport(ctx, userID, importID)
	if err != nil {
		return fmt.Errorf("failed to delete imported events: %w", err)
	}
	if err := s.stores.Imports.Delete(ctx, importID, userID); err != nil {
		return fmt.Errorf("failed to delete import: %w", err)
	}
	s.invalidate(userID, dates...)
	return nil
}

// ReplaceSource imports events from source and removes what earlier imports
// of the same source created.
func (s *Service) ReplaceSource(ctx context.Context, userID int64, source string, isPlan bool, events []models.Event) (*models.ICSImport, error) {
	previous, err := s.stores.Imports.GetBySource(ctx, userID, source)
	if err != nil {
		return nil, fmt.Errorf("failed to get previous imports: %w", err)
	}

	imp, err := s.ImportEvents(ctx, userID, source, isPlan, events)
	if err != nil {
		return nil, err
	}

	for _, old := range previous {
		if err := s.UndoImport(ctx, userID, old.ImportID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			log.Printf("Failed to remove previous import %s of %s: %v", old.ImportID, source, err)
		}
	}
	return imp, nil
}

// HasImports reports whether source has a live import for the user.
func (s *Service) HasImports(ctx context.Context, userID int64, source string) (bool, error) {
	imports, err := s.stores.Imports.GetBySource(ctx, userID, source)
	if err != nil {
		return false, fmt.Errorf("failed to get imports: %w", err)
	}
	return len(imports) > 0, nil
}
