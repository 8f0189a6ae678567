package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/hray3182/daybook/internal/clock"
	"github.com/hray3182/daybook/internal/dayview"
	"github.com/hray3182/daybook/internal/layout"
	"github.com/hray3182/daybook/internal/models"
	"github.com/hray3182/daybook/internal/repository"
)

// normalizeEvent validates the date and clock fields of ev and rewrites them
// into their canonical form.
func normalizeEvent(ev *models.Event) error {
	if _, err := parseDate(ev.Date); err != nil {
		return err
	}
	start, err := clock.NormalizeClock(ev.StartTime)
	if err != nil {
		return fmt.Errorf("%w: start %v", ErrInvalidInterval, err)
	}
	end, err := clock.NormalizeClock(ev.EndTime)
	if err != nil {
		return fmt.Errorf("%w: end %v", ErrInvalidInterval, err)
	}
	if start == end {
		return fmt.Errorf("%w: start and end are both %s", ErrInvalidInterval, start)
	}
	ev.StartTime, ev.EndTime = start, end
	ev.Title = strings.TrimSpace(ev.Title)
	return nil
}

// CreateEvent stores a new event and returns the stored record.
func (s *Service) CreateEvent(ctx context.Context, userID int64, ev models.Event) (*models.Event, error) {
	ev.EventID = 0
	ev.RoutineID = nil
	ev.UserID = userID
	if err := normalizeEvent(&ev); err != nil {
		return nil, err
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.stores.Events.Create(ctx, &ev); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	s.invalidate(userID, ev.Date)
	return &ev, nil
}

// UpdateEvent applies patch to a stored event and returns the stored record.
func (s *Service) UpdateEvent(ctx context.Context, userID, eventID int64, patch models.EventPatch) (*models.Event, error) {
	ev, err := s.stores.Events.GetByID(ctx, eventID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	previous := ev.Date
	if patch.IsEmpty() {
		return ev, nil
	}

	patch.Apply(ev)
	if err := normalizeEvent(ev); err != nil {
		return nil, err
	}
	if err := s.stores.Events.Update(ctx, ev); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	s.invalidate(userID, previous, ev.Date)
	return ev, nil
}

func (s *Service) DeleteEvent(ctx context.Context, userID, eventID int64) error {
	ev, err := s.stores.Events.GetByID(ctx, eventID, userID)
	if err != nil {
		return fmt.Errorf("failed to get event: %w", err)
	}
	if err := s.stores.Events.Delete(ctx, eventID, userID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	s.invalidate(userID, ev.Date)
	return nil
}

// GetEvent returns one stored event.
func (s *Service) GetEvent(ctx context.Context, userID, eventID int64) (*models.Event, error) {
	return s.stores.Events.GetByID(ctx, eventID, userID)
}

// userMutator binds the event mutations of one user to layout.Mutator.
type userMutator struct {
	s      *Service
	userID int64
}

func (m userMutator) CreateEvent(ctx context.Context, ev models.Event) (*models.Event, error) {
	return m.s.CreateEvent(ctx, m.userID, ev)
}

func (m userMutator) UpdateEvent(ctx context.Context, id int64, patch models.EventPatch) (*models.Event, error) {
	return m.s.UpdateEvent(ctx, m.userID, id, patch)
}

func (m userMutator) DeleteEvent(ctx context.Context, id int64) error {
	return m.s.DeleteEvent(ctx, m.userID, id)
}

// Mutator returns the event mutations of userID as a layout.Mutator.
func (s *Service) Mutator(userID int64) layout.Mutator {
	return userMutator{s: s, userID: userID}
}

// Board loads the editable timeline of date.
func (s *Service) Board(ctx context.Context, userID int64, date string) (*layout.Board, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	stored, err := s.stores.Events.GetByDates(ctx, userID, dayview.CandidateDates(day))
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	return layout.NewBoard(day, deref(stored), s.Mutator(userID)), nil
}

// CommitGesture applies a finished timeline gesture made on date. Creates are
// finalized again against the stored blocks of the column, so a stale client
// still gets the push-after placement. draft carries the descriptive fields
// of a created event.
func (s *Service) CommitGesture(ctx context.Context, userID int64, date string, p layout.Proposal, draft models.Event) (*models.Event, error) {
	board, err := s.Board(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	switch p.Kind {
	case layout.ProposalCreate:
		finalized, ok := layout.FinalizeCreate(p.Column, p.StartMinute, p.EndMinute, board.Blocks())
		if !ok {
			return nil, fmt.Errorf("%w: shorter than %d minutes", ErrInvalidInterval, clock.Step)
		}
		p = finalized
		draft.UserID = userID
	default:
		block, ok := board.Block(p.EventID)
		if !ok {
			return nil, fmt.Errorf("event %d is not shown on %s: %w", p.EventID, date, repository.ErrNotFound)
		}
		if err := checkProposal(p, block); err != nil {
			return nil, err
		}
		p.Column = block.Column
		p.OriginalDate = block.Date
	}

	return board.Commit(ctx, p, draft)
}

// checkProposal validates a move or resize against the block it edits.
func checkProposal(p layout.Proposal, b layout.Block) error {
	start, end := b.StartMinute, b.EndMinute
	switch p.Kind {
	case layout.ProposalMove:
		if p.StartMinute < 0 || p.EndMinute-p.StartMinute != b.Duration() {
			return fmt.Errorf("%w: a move keeps the duration and starts after midnight", ErrInvalidInterval)
		}
		start, end = p.StartMinute, p.EndMinute
	case layout.ProposalResizeStart:
		if p.StartMinute < 0 {
			return fmt.Errorf("%w: start before midnight", ErrInvalidInterval)
		}
		start = p.StartMinute
	case layout.ProposalResizeEnd:
		end = p.EndMinute
	default:
		return fmt.Errorf("%w: unknown gesture %d", ErrInvalidInput, p.Kind)
	}
	if d := end - start; d < clock.Step || d > layout.MaxDuration {
		return fmt.Errorf("%w: duration %d minutes", ErrInvalidInterval, d)
	}
	return nil
}
