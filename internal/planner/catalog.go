package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/hray3182/daybook/internal/clock"
	"github.com/hray3182/daybook/internal/layout"
	"github.com/hray3182/daybook/internal/models"
)

const defaultCategoryColor = "#9ca3af"

func (s *Service) ListCategories(ctx context.Context, userID int64) ([]*models.Category, error) {
	return s.stores.Categories.GetByUserID(ctx, userID)
}

func (s *Service) CreateCategory(ctx context.Context, userID int64, c models.Category) (*models.Category, error) {
	c.UserID = userID
	if err := normalizeCategory(&c); err != nil {
		return nil, err
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.stores.Categories.Create(ctx, &c); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, userID int64, c models.Category) (*models.Category, error) {
	c.UserID = userID
	if err := normalizeCategory(&c); err != nil {
		return nil, err
	}
	if err := s.stores.Categories.Update(ctx, &c); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	// Sleep detection reads category names.
	s.invalidateAll(userID)
	return &c, nil
}

// DeleteCategory removes a category that no event uses any more.
func (s *Service) DeleteCategory(ctx context.Context, userID, categoryID int64) error {
	if err := s.stores.Categories.Delete(ctx, categoryID, userID); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	s.invalidateAll(userID)
	return nil
}

func normalizeCategory(c *models.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}
	if c.Color == "" {
		c.Color = defaultCategoryColor
	}
	return nil
}

func (s *Service) ListRoutines(ctx context.Context, userID int64) ([]*models.Routine, error) {
	return s.stores.Routines.GetByUserID(ctx, userID)
}

func (s *Service) CreateRoutine(ctx context.Context, userID int64, r models.Routine) (*models.Routine, error) {
	r.UserID = userID
	if err := normalizeRoutine(&r); err != nil {
		return nil, err
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.stores.Routines.Create(ctx, &r); err != nil {
		return nil, fmt.Errorf("failed to create routine: %w", err)
	}
	s.invalidateAll(userID)
	return &r, nil
}

func (s *Service) UpdateRoutine(ctx context.Context, userID int64, r models.Routine) (*models.Routine, error) {
	r.UserID = userID
	if err := normalizeRoutine(&r); err != nil {
		return nil, err
	}
	if err := s.stores.Routines.Update(ctx, &r); err != nil {
		return nil, fmt.Errorf("failed to update routine: %w", err)
	}
	s.invalidateAll(userID)
	return &r, nil
}

func (s *Service) DeleteRoutine(ctx context.Context, userID, routineID int64) error {
	if err := s.stores.Routines.Delete(ctx, routineID, userID); err != nil {
		return fmt.Errorf("failed to delete routine: %w", err)
	}
	s.invalidateAll(userID)
	return nil
}

func normalizeRoutine(r *models.Routine) error {
	r.Text = strings.TrimSpace(r.Text)
	if r.Text == "" {
		return fmt.Errorf("%w: routine text is required", ErrInvalidInput)
	}
	scheduled, err := clock.NormalizeClock(r.ScheduledTime)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	r.ScheduledTime = scheduled

	if r.Duration <= 0 {
		r.Duration = clock.Step
	}
	if r.Duration > layout.MaxDuration {
		return fmt.Errorf("%w: duration above %d minutes", ErrInvalidInput, layout.MaxDuration)
	}

	weekdays, err := models.NewWeekdays(r.Weekdays...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	r.Weekdays = weekdays

	for _, d := range []*string{r.StartDate, r.EndDate} {
		if d == nil || *d == "" {
			continue
		}
		if _, err := parseDate(*d); err != nil {
			return err
		}
	}
	if r.StartDate != nil && r.EndDate != nil && *r.StartDate != "" && *r.EndDate != "" && *r.EndDate < *r.StartDate {
		return fmt.Errorf("%w: end date before start date", ErrInvalidInput)
	}
	return nil
}

// GetRoutineCheck returns the stored check of a routine on date. The read is
// not filtered by the routine's schedule, so a check stored on a day the
// routine does not occur is still returned.
func (s *Service) GetRoutineCheck(ctx context.Context, userID, routineID int64, date string) (*models.RoutineCheck, error) {
	if _, err := parseDate(date); err != nil {
		return nil, err
	}
	return s.stores.Checks.Get(ctx, userID, routineID, date)
}

// SetRoutineCheck records whether a routine was done on date.
func (s *Service) SetRoutineCheck(ctx context.Context, userID, routineID int64, date string, checked bool) (*models.RoutineCheck, error) {
	if _, err := parseDate(date); err != nil {
		return nil, err
	}
	if _, err := s.stores.Routines.GetByID(ctx, routineID, userID); err != nil {
		return nil, fmt.Errorf("failed to get routine: %w", err)
	}

	check := &models.RoutineCheck{UserID: userID, RoutineID: routineID, Date: date, Checked: checked}
	if err := s.stores.Checks.Set(ctx, check); err != nil {
		return nil, fmt.Errorf("failed to save routine check: %w", err)
	}
	s.forget(userID, date)
	return check, nil
}
