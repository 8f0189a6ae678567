package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hray3182/daybook/internal/clock"
	"github.com/hray3182/daybook/internal/models"
)

// PromotedDuration is the length of the event a completed todo turns into.
const PromotedDuration = 30 * time.Minute

func (s *Service) ListTodos(ctx context.Context, userID int64, includeCompleted bool) ([]*models.Todo, error) {
	return s.stores.Todos.GetByUserID(ctx, userID, includeCompleted)
}

func (s *Service) CreateTodo(ctx context.Context, userID int64, todo models.Todo) (*models.Todo, error) {
	todo.UserID = userID
	todo.Title = strings.TrimSpace(todo.Title)
	if todo.Title == "" {
		return nil, fmt.Errorf("%w: todo title is required", ErrInvalidInput)
	}
	if todo.Date != nil && *todo.Date == "" {
		todo.Date = nil
	}
	if todo.Date != nil {
		if _, err := parseDate(*todo.Date); err != nil {
			return nil, err
		}
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.stores.Todos.Create(ctx, &todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	if todo.Date != nil {
		s.forget(userID, *todo.Date)
	}
	return &todo, nil
}

// CompleteTodo marks a todo done. With promote set, the todo also becomes an
// actual event ending now, so finished work shows up on the timeline.
func (s *Service) CompleteTodo(ctx context.Context, userID, todoID int64, promote bool) (*models.Todo, error) {
	todo, err := s.stores.Todos.GetByID(ctx, todoID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}
	if todo.IsCompleted() {
		return todo, nil
	}

	now := s.now().In(s.location).Truncate(time.Minute)
	var eventID *int64
	if promote {
		start := now.Add(-PromotedDuration)
		ev, err := s.CreateEvent(ctx, userID, models.Event{
			Date:       start.Format(clock.DateLayout),
			StartTime:  start.Format(clock.ClockLayout),
			EndTime:    now.Format(clock.ClockLayout),
			Title:      todo.Title,
			CategoryID: todo.CategoryID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to promote todo: %w", err)
		}
		eventID = &ev.EventID
	}

	if err := s.stores.Todos.Complete(ctx, todoID, userID, now, eventID); err != nil {
		return nil, fmt.Errorf("failed to complete todo: %w", err)
	}
	todo.CompletedAt = &now
	todo.EventID = eventID
	if todo.Date != nil {
		s.forget(userID, *todo.Date)
	}
	return todo, nil
}

func (s *Service) DeleteTodo(ctx context.Context, userID, todoID int64) error {
	todo, err := s.stores.Todos.GetByID(ctx, todoID, userID)
	if err != nil {
		return fmt.Errorf("failed to get todo: %w", err)
	}
	if err := s.stores.Todos.Delete(ctx, todoID, userID); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if todo.Date != nil {
		s.forget(userID, *todo.Date)
	}
	return nil
}
