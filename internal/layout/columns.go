// Package layout places a day's events side by side and turns pointer
// gestures on the timeline into interval changes.
package layout

import (
	"sort"
	"time"

	"github.com/hray3182/daybook/internal/dayview"
)

// Item is one interval to lay out. Key must be unique within a column.
type Item struct {
	Key   string
	Start time.Time
	End   time.Time
}

// Placement is the horizontal slot assigned to an item.
type Placement struct {
	Key     string `json:"key"`
	Column  int    `json:"column"`
	Columns int    `json:"columns"`
}

// Width returns the rendered width in percent.
func (p Placement) Width() float64 {
	return 100 / float64(p.Columns)
}

// Left returns the rendered left offset in percent.
func (p Placement) Left() float64 {
	return float64(p.Column) * p.Width()
}

func overlaps(a, b Item) bool {
	lo := a.Start
	if b.Start.After(lo) {
		lo = b.Start
	}
	hi := a.End
	if b.End.Before(hi) {
		hi = b.End
	}
	return lo.Before(hi)
}

// Columns assigns each item a column so that overlapping items never share
// one. Items are packed greedily by start time (longer first on ties) into
// the first column whose last item has ended.
//
// Columns on each placement is local: one more than the highest column among
// the item itself and the items it overlaps, so a short item next to a
// single neighbour is not narrowed by unrelated clusters elsewhere in the day.
// Items with a non-positive duration are dropped. The result follows the
// input order.
func Columns(items []Item) []Placement {
	valid := make([]Item, 0, len(items))
	for _, it := range items {
		if it.End.After(it.Start) {
			valid = append(valid, it)
		}
	}

	order := make([]int, len(valid))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := valid[order[a]], valid[order[b]]
		if !ia.Start.Equal(ib.Start) {
			return ia.Start.Before(ib.Start)
		}
		return ia.End.After(ib.End)
	})

	column := make([]int, len(valid))
	var lastEnd []time.Time
	for _, idx := range order {
		it := valid[idx]
		placed := false
		for c, end := range lastEnd {
			if !end.After(it.Start) {
				column[idx] = c
				lastEnd[c] = it.End
				placed = true
				break
			}
		}
		if !placed {
			column[idx] = len(lastEnd)
			lastEnd = append(lastEnd, it.End)
		}
	}

	out := make([]Placement, len(valid))
	for i, it := range valid {
		highest := column[i]
		for j, other := range valid {
			if i == j || !overlaps(it, other) {
				continue
			}
			if column[j] > highest {
				highest = column[j]
			}
		}
		out[i] = Placement{Key: it.Key, Column: column[i], Columns: highest + 1}
	}
	return out
}

// ItemsFromPlaced converts resolved events into layout items keyed by key.
func ItemsFromPlaced(placed []dayview.Placed, key func(dayview.Placed) string) []Item {
	items := make([]Item, 0, len(placed))
	for _, p := range placed {
		items = append(items, Item{Key: key(p), Start: p.Start, End: p.End})
	}
	return items
}
