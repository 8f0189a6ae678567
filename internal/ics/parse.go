package ics

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

// Component is one VEVENT of a calendar before recurrence expansion.
type Component struct {
	UID         string
	Summary     string
	Description string
	Location    string

	Start  time.Time
	End    time.Time
	AllDay bool

	RRule   string
	ExDates []time.Time

	// RecurrenceID is set on a VEVENT that overrides one instance of a
	// recurring event.
	RecurrenceID *time.Time
}

// Parse reads every VEVENT of an ICS payload. Broken VEVENTs are logged and
// skipped.
func Parse(body []byte) ([]Component, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty calendar")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar: %w", err)
	}

	var out []Component
	for _, ve := range cal.Events() {
		c, err := parseEvent(ve)
		if err != nil {
			log.Printf("Skipping calendar event: %v", err)
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func parseEvent(ve *ical.VEvent) (Component, error) {
	var c Component

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return c, errors.New("missing UID")
	}
	c.UID = uid.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		c.Summary = unescape(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		c.Description = unescape(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		c.Location = unescape(p.Value)
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return c, fmt.Errorf("event %s has no DTSTART", c.UID)
	}
	c.AllDay = isDateValue(dtStart)

	if c.AllDay {
		start, err := ve.GetAllDayStartAt()
		if err != nil {
			return c, fmt.Errorf("event %s: %w", c.UID, err)
		}
		c.Start = start
		if end, err := ve.GetAllDayEndAt(); err == nil {
			c.End = end
		} else {
			c.End = start.AddDate(0, 0, 1)
		}
	} else {
		start, err := ve.GetStartAt()
		if err != nil {
			return c, fmt.Errorf("event %s: %w", c.UID, err)
		}
		end, err := ve.GetEndAt()
		if err != nil {
			return c, fmt.Errorf("event %s has no usable DTEND: %w", c.UID, err)
		}
		c.Start, c.End = start, end
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		c.RRule = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		loc := locationOf(p, c.Start.Location())
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseTime(strings.TrimSpace(part), loc); err == nil {
				c.ExDates = append(c.ExDates, t)
			}
		}
	}

	if p := ve.GetProperty("RECURRENCE-ID"); p != nil {
		if t, err := parseTime(p.Value, locationOf(p, c.Start.Location())); err == nil {
			c.RecurrenceID = &t
		}
	}

	return c, nil
}

func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters[string(ical.ParameterValue)]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// locationOf resolves the TZID parameter of p, falling back to def.
func locationOf(p *ical.IANAProperty, def *time.Location) *time.Location {
	if tzs, ok := p.ICalParameters[string(ical.ParameterTzid)]; ok && len(tzs) > 0 {
		if loc, err := time.LoadLocation(tzs[0]); err == nil {
			return loc
		}
	}
	if def == nil {
		return time.UTC
	}
	return def
}

// parseTime reads the DATE and DATE-TIME forms used by EXDATE and
// RECURRENCE-ID.
func parseTime(v string, loc *time.Location) (time.Time, error) {
	switch {
	case v == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}

var textUnescaper = strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)

func unescape(s string) string {
	return textUnescaper.Replace(s)
}
