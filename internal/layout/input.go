package layout

import (
	"math"
	"time"
)

const (
	// LongPress is how long a finger must rest before a touch gesture starts.
	LongPress = 500 * time.Millisecond
	// TouchSlop is the movement in pixels that turns a pending long-press
	// into a page scroll.
	TouchSlop = 10.0
)

// Source is the device a pointer event came from.
type Source int

const (
	SourceMouse Source = iota
	SourceTouch
)

// Pointer is a device-independent pointer sample.
type Pointer struct {
	Source Source
	X, Y   float64
	At     time.Time
}

// Coalescer keeps only the most recent pointer-move between frames so the
// layout is recomputed at most once per frame.
type Coalescer struct {
	y       float64
	pending bool
}

func (c *Coalescer) Push(y float64) {
	c.y = y
	c.pending = true
}

// Take returns the latest pending position and clears it.
func (c *Coalescer) Take() (float64, bool) {
	if !c.pending {
		return 0, false
	}
	c.pending = false
	return c.y, true
}

func (c *Coalescer) Reset() {
	c.pending = false
}

// Controller feeds mouse and touch input into a Machine.
//
// Mouse input reaches the machine directly. Touch input is held back until the
// finger rests for LongPress without moving more than TouchSlop, so ordinary
// scrolling wins over accidental edits. With EditMode set, touch behaves like
// the mouse.
type Controller struct {
	Machine  *Machine
	EditMode bool

	moves Coalescer

	pending   bool
	pendingAt time.Time
	pendingX  float64
	pendingY  float64
	target    Target
}

func NewController(m *Machine) *Controller {
	return &Controller{Machine: m}
}

// Down handles pointer-down on target. It reports whether a gesture started.
func (c *Controller) Down(p Pointer, t Target) bool {
	if c.Machine.Busy() || c.pending {
		return false
	}
	if p.Source == SourceTouch && !c.EditMode {
		c.pending = true
		c.pendingAt = p.At
		c.pendingX, c.pendingY = p.X, p.Y
		c.target = t
		return false
	}
	return c.Machine.Down(t, p.Y)
}

// Tick arms a pending long-press once it has been held long enough. It
// reports whether a gesture started.
func (c *Controller) Tick(now time.Time) bool {
	if !c.pending || now.Sub(c.pendingAt) < LongPress {
		return false
	}
	c.pending = false
	return c.Machine.Down(c.target, c.pendingY)
}

// Move records a pointer-move. The machine sees it on the next Frame.
func (c *Controller) Move(p Pointer) {
	if c.pending {
		if math.Hypot(p.X-c.pendingX, p.Y-c.pendingY) > TouchSlop {
			c.pending = false
			return
		}
		c.Tick(p.At)
		return
	}
	if c.Machine.Busy() {
		c.moves.Push(p.Y)
	}
}

// Frame applies the latest coalesced move and returns the live interval.
func (c *Controller) Frame() (Proposal, bool) {
	y, ok := c.moves.Take()
	if !ok {
		return c.Machine.Preview()
	}
	return c.Machine.Move(y)
}

// Up finishes the gesture, flushing any move not yet applied.
func (c *Controller) Up(p Pointer, existing []Block) (Proposal, bool) {
	if c.pending {
		// Released before the long-press armed: a tap, not an edit.
		c.pending = false
		return Proposal{}, false
	}
	if !c.Machine.Busy() {
		return Proposal{}, false
	}
	c.moves.Push(p.Y)
	c.Frame()
	return c.Machine.Up(existing)
}

// Leave aborts everything in flight.
func (c *Controller) Leave() {
	c.pending = false
	c.moves.Reset()
	c.Machine.Leave()
}
