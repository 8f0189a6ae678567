package dayview

import (
	"sort"
	"strings"
	"time"

	"github.com/hray3182/daybook/internal/clock"
	"github.com/hray3182/daybook/internal/models"
)

const (
	// SleepTitle is the literal title of a recorded sleep block.
	SleepTitle = "잠"
	// SleepCategoryMarker must appear in the category name of a sleep block.
	SleepCategoryMarker = "잠"
)

// SleepCandidate pairs an event with the name of its category.
type SleepCandidate struct {
	Event        models.Event
	CategoryName string
}

// IsSleep reports whether the candidate counts for wake/sleep inference.
// Only actual (non-plan) events count. An event qualifies either through its
// is_sleep flag or through the sleep title together with a sleep category.
func (c SleepCandidate) IsSleep() bool {
	if c.Event.IsPlan {
		return false
	}
	if c.Event.IsSleep {
		return true
	}
	return c.Event.Title == SleepTitle && strings.Contains(c.CategoryName, SleepCategoryMarker)
}

// WakeSleep is the inferred wake-up and bed time around a day. Empty strings
// and nil instants mean nothing was found.
type WakeSleep struct {
	WakeTime  string     `json:"wake_time"` // HH:MM
	WakeAt    *time.Time `json:"wake_at"`
	SleepTime string     `json:"sleep_time"` // HH:MM
	SleepAt   *time.Time `json:"sleep_at"`
}

func (w WakeSleep) HasWake() bool  { return w.WakeAt != nil }
func (w WakeSleep) HasSleep() bool { return w.SleepAt != nil }

// WindowDates returns the first and last date queried for wake/sleep of day.
func WindowDates(day time.Time) (string, string) {
	return clock.FormatDate(day.AddDate(0, 0, -1)), clock.FormatDate(day.AddDate(0, 0, 1))
}

type sleepBlock struct {
	date    string
	start   string
	end     string
	endDate string
}

// ResolveWakeSleep infers the wake time on day and the next sleep time after it.
//
// Wake is the latest end_time among sleep blocks whose effective end date is
// day. Sleep is the start of the earliest sleep block dated on or after day
// that starts after the wake time. Clock values are compared as zero-padded
// HH:MM:SS strings.
func ResolveWakeSleep(day time.Time, candidates []SleepCandidate) WakeSleep {
	target := clock.FormatDate(day)

	blocks := make([]sleepBlock, 0, len(candidates))
	for _, c := range candidates {
		if !c.IsSleep() {
			continue
		}
		start, err := clock.NormalizeClock(c.Event.StartTime)
		if err != nil {
			continue
		}
		end, err := clock.NormalizeClock(c.Event.EndTime)
		if err != nil {
			continue
		}
		endDate, err := clock.EndDate(c.Event.Date, start, end)
		if err != nil {
			continue
		}
		blocks = append(blocks, sleepBlock{date: c.Event.Date, start: start, end: end, endDate: endDate})
	}

	var out WakeSleep

	wake := ""
	for _, b := range blocks {
		if b.endDate == target && b.end > wake {
			wake = b.end
		}
	}
	if wake != "" {
		at := day.Add(mustClock(wake))
		out.WakeTime = clock.ShortClock(wake)
		out.WakeAt = &at
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].date != blocks[j].date {
			return blocks[i].date < blocks[j].date
		}
		return blocks[i].start < blocks[j].start
	})

	for _, b := range blocks {
		if b.date < target {
			continue
		}
		if wake != "" && b.date == target {
			if b.start <= wake {
				continue
			}
			if b.endDate == target && b.end <= wake {
				continue
			}
		}
		d, err := clock.ParseDate(b.date)
		if err != nil {
			continue
		}
		at := d.Add(mustClock(b.start))
		out.SleepTime = clock.ShortClock(b.start)
		out.SleepAt = &at
		break
	}

	return out
}

// mustClock parses a clock value already validated by NormalizeClock.
func mustClock(s string) time.Duration {
	d, _ := clock.ParseClock(s)
	return d
}
