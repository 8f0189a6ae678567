package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// maxWeekdayNesting bounds how many layers of JSON string encoding are peeled
// off a weekdays payload.
const maxWeekdayNesting = 4

// Weekdays is a sorted set of weekday numbers, Sunday=0 .. Saturday=6.
// An empty set means every day.
type Weekdays []int

// NewWeekdays builds a normalized set, rejecting values outside 0..6.
func NewWeekdays(days ...int) (Weekdays, error) {
	seen := make(map[int]bool, len(days))
	out := make(Weekdays, 0, len(days))
	for _, d := range days {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("weekday %d out of range 0-6", d)
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Ints(out)
	return out, nil
}

// EveryDay reports whether the set places no weekday restriction.
func (w Weekdays) EveryDay() bool {
	return len(w) == 0
}

// Contains reports whether the routine runs on wd.
func (w Weekdays) Contains(wd time.Weekday) bool {
	if w.EveryDay() {
		return true
	}
	for _, d := range w {
		if d == int(wd) {
			return true
		}
	}
	return false
}

func (w Weekdays) MarshalJSON() ([]byte, error) {
	if w == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int(w))
}

// UnmarshalJSON accepts an array of numbers, null, or the same payload wrapped
// in one or more layers of JSON string encoding ("[1,3]", "\"[1,3]\"").
// A bare comma separated string ("1,3,5") is accepted as well.
func (w *Weekdays) UnmarshalJSON(data []byte) error {
	parsed, err := parseWeekdays(data, 0)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

func parseWeekdays(data []byte, depth int) (Weekdays, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Weekdays{}, nil
	}
	if depth > maxWeekdayNesting {
		return nil, fmt.Errorf("weekdays nested too deeply")
	}

	switch data[0] {
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse weekdays: %w", err)
		}
		days := make([]int, 0, len(raw))
		for _, item := range raw {
			d, err := weekdayValue(item)
			if err != nil {
				return nil, err
			}
			days = append(days, d)
		}
		return NewWeekdays(days...)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse weekdays: %w", err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return Weekdays{}, nil
		}
		if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "\"") || s == "null" {
			return parseWeekdays([]byte(s), depth+1)
		}
		return parseWeekdayList(s)
	default:
		return nil, fmt.Errorf("unsupported weekdays value %s", string(data))
	}
}

func weekdayValue(item json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(item, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(item, &s); err != nil {
		return 0, fmt.Errorf("invalid weekday %s", string(item))
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid weekday %q", s)
	}
	return n, nil
}

func parseWeekdayList(s string) (Weekdays, error) {
	parts := strings.Split(s, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid weekday %q", p)
		}
		days = append(days, n)
	}
	return NewWeekdays(days...)
}
