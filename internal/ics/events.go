package ics

import (
	"strings"
	"time"

	"github.com/hray3182/daybook/internal/clock"
	"github.com/hray3182/daybook/internal/models"
)

// ToEvents converts occurrences into events in loc. All-day occurrences and
// occurrences lasting a whole day or more are skipped, since an event may
// cross at most one midnight.
func ToEvents(occurrences []Occurrence, loc *time.Location, isPlan bool) []models.Event {
	if loc == nil {
		loc = time.UTC
	}

	events := make([]models.Event, 0, len(occurrences))
	for _, o := range occurrences {
		if o.AllDay {
			continue
		}
		length := o.End.Sub(o.Start)
		if length <= 0 || length >= 24*time.Hour {
			continue
		}

		start := o.Start.In(loc).Truncate(time.Minute)
		end := o.End.In(loc).Truncate(time.Minute)
		startClock := clock.FormatClock(time.Duration(start.Hour())*time.Hour + time.Duration(start.Minute())*time.Minute)
		endClock := clock.FormatClock(time.Duration(end.Hour())*time.Hour + time.Duration(end.Minute())*time.Minute)
		if startClock == endClock {
			continue
		}

		events = append(events, models.Event{
			Date:        start.Format(clock.DateLayout),
			StartTime:   startClock,
			EndTime:     endClock,
			Title:       strings.TrimSpace(o.Summary),
			Description: describe(o),
			IsPlan:      isPlan,
		})
	}
	return events
}

func describe(o Occurrence) string {
	desc := strings.TrimSpace(o.Description)
	if where := strings.TrimSpace(o.Location); where != "" {
		if desc != "" {
			return desc + "\n@ " + where
		}
		return "@ " + where
	}
	return desc
}

// Events parses body and converts it into events in loc, expanding recurring
// VEVENTs inside [from, to].
func Events(body []byte, from, to time.Time, loc *time.Location, isPlan bool) ([]models.Event, error) {
	components, err := Parse(body)
	if err != nil {
		return nil, err
	}
	occurrences, err := Expand(components, from, to)
	if err != nil {
		return nil, err
	}
	return ToEvents(occurrences, loc, isPlan), nil
}

// Window returns the default expansion window around now: a week back and a
// quarter ahead.
func Window(now time.Time) (time.Time, time.Time) {
	return now.AddDate(0, 0, -7), now.AddDate(0, 3, 0)
}
