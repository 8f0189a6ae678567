package layout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hray3182/daybook/internal/clock"
	"github.com/hray3182/daybook/internal/dayview"
	"github.com/hray3182/daybook/internal/models"
)

var ErrUnknownEvent = errors.New("event not on board")

// Mutator persists event changes. Each call returns the authoritative record.
type Mutator interface {
	CreateEvent(ctx context.Context, ev models.Event) (*models.Event, error)
	UpdateEvent(ctx context.Context, id int64, patch models.EventPatch) (*models.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
}

type slot struct {
	tmp int64 // non-zero while an optimistic create is unacknowledged
	ev  models.Event
}

// Board is the editable state of one displayed day. Gesture results are
// applied optimistically, then replaced by the stored record once the
// mutator acknowledges them, or rolled back when it fails.
type Board struct {
	mu      sync.Mutex
	display time.Time
	slots   []slot
	nextTmp int64
	mutator Mutator
}

func NewBoard(display time.Time, events []models.Event, m Mutator) *Board {
	b := &Board{display: display, mutator: m}
	for _, ev := range events {
		b.slots = append(b.slots, slot{ev: ev})
	}
	return b
}

// Events returns a snapshot of the board, optimistic entries included.
func (b *Board) Events() []models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Event, len(b.slots))
	for i, s := range b.slots {
		out[i] = s.ev
	}
	return out
}

// Blocks returns the events visible on the displayed day as timeline blocks,
// with minutes left unclamped.
func (b *Board) Blocks() []Block {
	events := b.Events()
	dayStart, _ := clock.DayBounds(b.display)

	placed := dayview.VisibleOn(b.display, events)
	blocks := make([]Block, 0, len(placed))
	for _, p := range placed {
		blocks = append(blocks, Block{
			EventID:     p.Event.EventID,
			Date:        p.Event.Date,
			Column:      ColumnOf(&p.Event),
			StartMinute: clock.MinutesBetween(dayStart, p.Start),
			EndMinute:   clock.MinutesBetween(dayStart, p.End),
		})
	}
	return blocks
}

// Block returns the block of a saved event.
func (b *Board) Block(id int64) (Block, bool) {
	for _, blk := range b.Blocks() {
		if blk.EventID == id {
			return blk, true
		}
	}
	return Block{}, false
}

// Commit applies a gesture proposal. For creates, draft supplies the
// descriptive fields of the new event.
func (b *Board) Commit(ctx context.Context, p Proposal, draft models.Event) (*models.Event, error) {
	patch := p.Patch(b.display)
	if p.Kind == ProposalCreate {
		draft.EventID = 0
		draft.IsPlan = p.Column == ColumnPlan
		patch.Apply(&draft)
		return b.create(ctx, draft)
	}
	return b.update(ctx, p.EventID, patch)
}

func (b *Board) create(ctx context.Context, ev models.Event) (*models.Event, error) {
	b.mu.Lock()
	b.nextTmp++
	tmp := b.nextTmp
	b.slots = append(b.slots, slot{tmp: tmp, ev: ev})
	b.mu.Unlock()

	saved, err := b.mutator.CreateEvent(ctx, ev)

	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.indexTmp(tmp)
	if err != nil {
		log.Printf("Failed to create event on %s, rolling back: %v", ev.Date, err)
		if idx >= 0 {
			b.slots = append(b.slots[:idx], b.slots[idx+1:]...)
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	if idx >= 0 {
		b.slots[idx] = slot{ev: *saved}
	}
	return saved, nil
}

func (b *Board) update(ctx context.Context, id int64, patch models.EventPatch) (*models.Event, error) {
	b.mu.Lock()
	idx := b.indexID(id)
	if idx < 0 {
		b.mu.Unlock()
		return nil, ErrUnknownEvent
	}
	previous := b.slots[idx].ev
	patch.Apply(&b.slots[idx].ev)
	b.mu.Unlock()

	saved, err := b.mutator.UpdateEvent(ctx, id, patch)

	b.mu.Lock()
	defer b.mu.Unlock()
	idx = b.indexID(id)
	if err != nil {
		log.Printf("Failed to update event %d, rolling back: %v", id, err)
		if idx >= 0 {
			b.slots[idx].ev = previous
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	if idx >= 0 {
		b.slots[idx].ev = *saved
	}
	return saved, nil
}

// Delete removes an event, restoring it if the mutator fails.
func (b *Board) Delete(ctx context.Context, id int64) error {
	b.mu.Lock()
	idx := b.indexID(id)
	if idx < 0 {
		b.mu.Unlock()
		return ErrUnknownEvent
	}
	removed := b.slots[idx]
	b.slots = append(b.slots[:idx], b.slots[idx+1:]...)
	b.mu.Unlock()

	if err := b.mutator.DeleteEvent(ctx, id); err != nil {
		log.Printf("Failed to delete event %d, restoring: %v", id, err)
		b.mu.Lock()
		if idx > len(b.slots) {
			idx = len(b.slots)
		}
		b.slots = append(b.slots[:idx], append([]slot{removed}, b.slots[idx:]...)...)
		b.mu.Unlock()
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

func (b *Board) indexID(id int64) int {
	for i, s := range b.slots {
		if s.tmp == 0 && s.ev.EventID == id {
			return i
		}
	}
	return -1
}

func (b *Board) indexTmp(tmp int64) int {
	for i, s := range b.slots {
		if s.tmp == tmp {
			return i
		}
	}
	return -1
}
