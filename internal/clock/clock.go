package clock

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"

	MinutesPerDay = 24 * 60
	// Step is the grid every interactive edit is quantized to.
	Step = 10
)

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
// Dates are naive wall-clock values; UTC keeps day arithmetic free of DST gaps.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays shifts a YYYY-MM-DD date string by n days.
func AddDays(date string, n int) (string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(d.AddDate(0, 0, n)), nil
}

// Today returns the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	l := now.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseClock parses HH:MM or HH:MM:SS into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	layout := ClockLayout
	if strings.Count(s, ":") == 1 {
		layout = "15:04"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}

// NormalizeClock rewrites HH:MM or HH:MM:SS into the zero-padded HH:MM:SS form.
// The fixed width is what makes string comparison of clock values safe.
func NormalizeClock(s string) (string, error) {
	d, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return FormatClock(d), nil
}

func FormatClock(d time.Duration) string {
	d %= 24 * time.Hour
	if d < 0 {
		d += 24 * time.Hour
	}
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	sec := int(d % time.Minute / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}

// ShortClock trims HH:MM:SS to HH:MM.
func ShortClock(s string) string {
	if len(s) >= 5 {
		return s[:5]
	}
	return s
}

// IsOvernight reports whether an interval with these wall-clock bounds ends on
// the following calendar day.
func IsOvernight(start, end string) bool {
	return end < start
}

// Span resolves an event's absolute interval. When end is clock-earlier than
// start the interval ends on date+1.
func Span(date, start, end string) (time.Time, time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	s, err := ParseClock(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	from := d.Add(s)
	to := d.Add(e)
	if e < s {
		to = to.AddDate(0, 0, 1)
	}
	return from, to, nil
}

// EndDate returns the calendar date an interval ends on.
func EndDate(date, start, end string) (string, error) {
	if IsOvernight(start, end) {
		return AddDays(date, 1)
	}
	return date, nil
}

// DayBounds returns the 00:00:00 and 23:59:59 instants of day.
func DayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.Add(24*time.Hour - time.Second)
}

// MinuteOf converts a clock string to minutes since midnight.
func MinuteOf(s string) (int, error) {
	d, err := ParseClock(s)
	if err != nil {
		return 0, err
	}
	return int(d / time.Minute), nil
}

// ClockOfMinute converts minutes since midnight to HH:MM:SS, wrapping values
// outside a single day.
func ClockOfMinute(m int) string {
	return FormatClock(time.Duration(m) * time.Minute)
}

// MinutesBetween returns the whole minutes from day start to t.
func MinutesBetween(dayStart, t time.Time) int {
	return int(t.Sub(dayStart) / time.Minute)
}

// Snap quantizes a minute value down onto the Step grid.
func Snap(m int) int {
	q := m / Step
	if m%Step != 0 && m < 0 {
		q--
	}
	return q * Step
}
