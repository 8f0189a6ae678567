package layout

import (
	"fmt"
	"math"
	"time"

	"github.com/hray3182/daybook/internal/clock"
	"github.com/hray3182/daybook/internal/models"
)

// MaxDuration keeps an edited interval within one midnight crossing.
const MaxDuration = clock.MinutesPerDay - clock.Step

// Column selects one of the two independent event sets of a day.
type Column int

const (
	ColumnActual Column = iota
	ColumnPlan
)

func (c Column) String() string {
	if c == ColumnPlan {
		return "plan"
	}
	return "actual"
}

func (c Column) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Column) UnmarshalText(text []byte) error {
	switch string(text) {
	case "plan":
		*c = ColumnPlan
	case "actual":
		*c = ColumnActual
	default:
		return fmt.Errorf("unknown column %q", string(text))
	}
	return nil
}

// ColumnOf returns the column an event belongs to.
func ColumnOf(ev *models.Event) Column {
	if ev.IsPlan {
		return ColumnPlan
	}
	return ColumnActual
}

// Block is an event as drawn on the displayed day. Minutes are relative to
// the displayed day's midnight; StartMinute is negative for events carried
// over from the previous day and EndMinute may exceed 1440.
type Block struct {
	EventID     int64
	Date        string
	Column      Column
	StartMinute int
	EndMinute   int
}

func (b Block) Duration() int {
	return b.EndMinute - b.StartMinute
}

// State is the gesture currently in progress.
type State int

const (
	StateIdle State = iota
	StateCreating
	StateMoving
	StateResizingTop
	StateResizingBottom
)

func (s State) String() string {
	switch s {
	case StateCreating:
		return "creating"
	case StateMoving:
		return "dragging-move"
	case StateResizingTop:
		return "dragging-resize-top"
	case StateResizingBottom:
		return "dragging-resize-bottom"
	default:
		return "idle"
	}
}

// TargetKind tells what the pointer went down on.
type TargetKind int

const (
	TargetEmpty TargetKind = iota
	TargetBody
	TargetTopEdge
	TargetBottomEdge
)

// Target is the hit-test result of a pointer-down.
type Target struct {
	Kind   TargetKind
	Column Column
	Block  Block // unset for TargetEmpty
}

// ProposalKind is the mutation a finished gesture asks for.
type ProposalKind int

const (
	ProposalCreate ProposalKind = iota
	ProposalMove
	ProposalResizeStart
	ProposalResizeEnd
)

func (k ProposalKind) String() string {
	switch k {
	case ProposalMove:
		return "move"
	case ProposalResizeStart:
		return "resize-start"
	case ProposalResizeEnd:
		return "resize-end"
	default:
		return "create"
	}
}

func (k ProposalKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ProposalKind) UnmarshalText(text []byte) error {
	for _, candidate := range []ProposalKind{ProposalCreate, ProposalMove, ProposalResizeStart, ProposalResizeEnd} {
		if candidate.String() == string(text) {
			*k = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown gesture kind %q", string(text))
}

// Proposal is an interval produced by a gesture, in minutes relative to the
// displayed day.
type Proposal struct {
	Kind         ProposalKind `json:"kind"`
	Column       Column       `json:"column"`
	EventID      int64        `json:"event_id,omitempty"`
	OriginalDate string       `json:"original_date,omitempty"`
	StartMinute  int          `json:"start_minute"`
	EndMinute    int          `json:"end_minute"`
}

// dateAt returns the calendar date holding minute m of the displayed day.
func dateAt(display time.Time, m int) string {
	days := m / clock.MinutesPerDay
	if m < 0 && m%clock.MinutesPerDay != 0 {
		days--
	}
	return clock.FormatDate(display.AddDate(0, 0, days))
}

// Patch converts the proposal into the fields to write. A move rewrites the
// date and both clock values, a top-edge resize the start (and the date when
// it changed), a bottom-edge resize only the end. Clock values past midnight
// wrap and rely on the overnight rule to render on the next load.
func (p Proposal) Patch(display time.Time) models.EventPatch {
	start := clock.ClockOfMinute(p.StartMinute)
	end := clock.ClockOfMinute(p.EndMinute)
	date := dateAt(display, p.StartMinute)

	var patch models.EventPatch
	switch p.Kind {
	case ProposalCreate, ProposalMove:
		patch.Date = &date
		patch.StartTime = &start
		patch.EndTime = &end
	case ProposalResizeStart:
		patch.StartTime = &start
		if date != p.OriginalDate {
			patch.Date = &date
		}
	case ProposalResizeEnd:
		patch.EndTime = &end
	}
	return patch
}

// FinalizeCreate turns the two anchors of a create drag into an interval.
// Spans shorter than one grid step are treated as a mis-click. When the span
// overlaps existing blocks of the same column it is pushed to start at the
// latest end among them, keeping the dragged duration.
func FinalizeCreate(column Column, anchor, current int, existing []Block) (Proposal, bool) {
	start, end := anchor, current
	if end < start {
		start, end = end, start
	}
	if end-start < clock.Step {
		return Proposal{}, false
	}
	duration := end - start
	if duration > MaxDuration {
		duration = MaxDuration
		end = start + duration
	}

	pushTo := start
	conflict := false
	for _, b := range existing {
		if b.Column != column {
			continue
		}
		if b.StartMinute < end && start < b.EndMinute {
			conflict = true
			if b.EndMinute > pushTo {
				pushTo = b.EndMinute
			}
		}
	}
	if conflict {
		start = pushTo
		end = start + duration
	}

	return Proposal{Kind: ProposalCreate, Column: column, StartMinute: start, EndMinute: end}, true
}

// Machine is the timeline gesture state machine. Only one gesture runs at a
// time; pointer input arrives already abstracted from mouse or touch.
type Machine struct {
	hourHeight float64

	state      State
	column     Column
	anchor     int
	current    int
	block      Block
	offset     float64
	duration   int
	preview    Proposal
	outOfRange bool
}

// NewMachine creates a machine for a timeline drawn at hourHeight pixels per hour.
func NewMachine(hourHeight float64) *Machine {
	if hourHeight <= 0 {
		hourHeight = 60
	}
	return &Machine{hourHeight: hourHeight}
}

func (m *Machine) State() State { return m.state }

// Busy reports whether a gesture is in progress.
func (m *Machine) Busy() bool { return m.state != StateIdle }

// Preview returns the live interval of the gesture in progress.
func (m *Machine) Preview() (Proposal, bool) {
	if m.state == StateIdle {
		return Proposal{}, false
	}
	return m.preview, true
}

func (m *Machine) minuteAt(y float64) int {
	return int(math.Floor(y / m.hourHeight * 60))
}

func (m *Machine) pixelAt(minute int) float64 {
	return float64(minute) * m.hourHeight / 60
}

func clampDay(minute int) int {
	if minute < 0 {
		return 0
	}
	if minute > clock.MinutesPerDay {
		return clock.MinutesPerDay
	}
	return minute
}

// Down starts a gesture. It returns false while another gesture is active.
func (m *Machine) Down(t Target, y float64) bool {
	if m.Busy() {
		return false
	}
	m.column = t.Column
	m.outOfRange = false

	switch t.Kind {
	case TargetEmpty:
		m.anchor = clampDay(clock.Snap(m.minuteAt(y)))
		m.current = m.anchor
		m.state = StateCreating
		m.preview = Proposal{Kind: ProposalCreate, Column: t.Column, StartMinute: m.anchor, EndMinute: m.anchor}
		return true
	case TargetBody:
		m.state = StateMoving
		m.offset = y - m.pixelAt(t.Block.StartMinute)
		m.duration = t.Block.Duration()
		m.preview = m.blockProposal(ProposalMove, t.Block)
	case TargetTopEdge:
		m.state = StateResizingTop
		m.preview = m.blockProposal(ProposalResizeStart, t.Block)
	case TargetBottomEdge:
		m.state = StateResizingBottom
		m.preview = m.blockProposal(ProposalResizeEnd, t.Block)
	default:
		return false
	}
	m.block = t.Block
	return true
}

func (m *Machine) blockProposal(kind ProposalKind, b Block) Proposal {
	return Proposal{
		Kind:         kind,
		Column:       b.Column,
		EventID:      b.EventID,
		OriginalDate: b.Date,
		StartMinute:  b.StartMinute,
		EndMinute:    b.EndMinute,
	}
}

// Move updates the live interval for a pointer at y and returns it.
func (m *Machine) Move(y float64) (Proposal, bool) {
	switch m.state {
	case StateCreating:
		m.current = clampDay(clock.Snap(m.minuteAt(y)))
		m.preview.StartMinute = min(m.anchor, m.current)
		m.preview.EndMinute = max(m.anchor, m.current)
	case StateMoving:
		start := clock.Snap(m.minuteAt(y - m.offset))
		if start < 0 {
			start = 0
		}
		m.preview.StartMinute = start
		m.preview.EndMinute = start + m.duration
	case StateResizingTop:
		minute := clock.Snap(m.minuteAt(y))
		if minute < 0 {
			m.outOfRange = true
			return m.preview, true
		}
		m.outOfRange = false
		limit := m.block.EndMinute - clock.Step
		start := min(minute, limit)
		if m.block.EndMinute-start > MaxDuration {
			start = m.block.EndMinute - MaxDuration
		}
		m.preview.StartMinute = start
	case StateResizingBottom:
		end := max(clock.Snap(m.minuteAt(y)), m.block.StartMinute+clock.Step)
		if end-m.block.StartMinute > MaxDuration {
			end = m.block.StartMinute + MaxDuration
		}
		m.preview.EndMinute = end
	default:
		return Proposal{}, false
	}
	return m.preview, true
}

// Up finishes the gesture. existing holds the blocks of the displayed day and
// is consulted only when creating. It returns false when nothing should be
// committed: a too-short create, an unchanged move or resize, or a top-edge
// resize released above midnight.
func (m *Machine) Up(existing []Block) (Proposal, bool) {
	defer m.reset()

	switch m.state {
	case StateCreating:
		return FinalizeCreate(m.column, m.anchor, m.current, existing)
	case StateMoving:
		if m.preview.StartMinute == m.block.StartMinute {
			return Proposal{}, false
		}
		return m.preview, true
	case StateResizingTop:
		if m.outOfRange || m.preview.StartMinute == m.block.StartMinute {
			return Proposal{}, false
		}
		return m.preview, true
	case StateResizingBottom:
		if m.preview.EndMinute == m.block.EndMinute {
			return Proposal{}, false
		}
		return m.preview, true
	default:
		return Proposal{}, false
	}
}

// Leave aborts any gesture without committing.
func (m *Machine) Leave() {
	m.reset()
}

func (m *Machine) reset() {
	m.state = StateIdle
	m.block = Block{}
	m.preview = Proposal{}
	m.offset = 0
	m.duration = 0
	m.anchor = 0
	m.current = 0
	m.outOfRange = false
}
