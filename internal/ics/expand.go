package ics

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/teambition/rrule-go"
)

// MaxOccurrences caps how many instances a single UID may expand to.
const MaxOccurrences = 5000

// Occurrence is one concrete instance of a calendar event.
type Occurrence struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	AllDay      bool
}

// Expand turns components into occurrences. Recurring components are
// expanded to the instances overlapping [from, to]; single components are
// kept whatever their date. Overrides replace the instance whose start
// matches their RECURRENCE-ID.
func Expand(components []Component, from, to time.Time) ([]Occurrence, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("window ends at %s before it starts at %s", to, from)
	}

	bases := make(map[string][]Component)
	overrides := make(map[string][]Component)
	var uids []string
	for _, c := range components {
		if c.RecurrenceID != nil {
			overrides[c.UID] = append(overrides[c.UID], c)
			continue
		}
		if _, ok := bases[c.UID]; !ok {
			uids = append(uids, c.UID)
		}
		bases[c.UID] = append(bases[c.UID], c)
	}

	var out []Occurrence
	for _, uid := range uids {
		count := 0
		for _, c := range bases[uid] {
			if c.RRule == "" {
				out = append(out, occurrence(c, c.Start, c.End))
				count++
				continue
			}
			occ, err := expandRecurring(c, overrides[uid], from, to, MaxOccurrences-count)
			if err != nil {
				log.Printf("Failed to expand recurring event %s: %v", uid, err)
				continue
			}
			out = append(out, occ...)
			count += len(occ)
		}
		if count >= MaxOccurrences {
			log.Printf("Recurring event %s truncated at %d occurrences", uid, MaxOccurrences)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func expandRecurring(c Component, overrides []Component, from, to time.Time, limit int) ([]Occurrence, error) {
	if limit <= 0 {
		return nil, nil
	}

	r, err := rrule.StrToRRule(c.RRule)
	if err != nil {
		return nil, err
	}
	r.DTStart(c.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range c.ExDates {
		set.ExDate(ex.In(c.Start.Location()))
	}

	length := c.End.Sub(c.Start)
	// Instances starting before from can still run into the window.
	starts := set.Between(from.Add(-length).In(c.Start.Location()), to.In(c.Start.Location()), true)
	if len(starts) > limit {
		starts = starts[:limit]
	}

	out := make([]Occurrence, 0, len(starts))
	for _, start := range starts {
		end := start.Add(length)
		if c.AllDay {
			// Keep the wall-clock day across DST changes.
			end = start.AddDate(0, 0, int(length.Hours()/24+0.5))
		}
		instance := c
		if o, ok := findOverride(overrides, start); ok {
			instance, start, end = o, o.Start, o.End
		}
		if !end.After(from) {
			continue
		}
		out = append(out, occurrence(instance, start, end))
	}
	return out, nil
}

func findOverride(overrides []Component, start time.Time) (Component, bool) {
	for _, o := range overrides {
		if o.RecurrenceID != nil && o.RecurrenceID.Equal(start) {
			return o, true
		}
	}
	return Component{}, false
}

func occurrence(c Component, start, end time.Time) Occurrence {
	return Occurrence{
		UID:         c.UID,
		Summary:     c.Summary,
		Description: c.Description,
		Location:    c.Location,
		Start:       start,
		End:         end,
		AllDay:      c.AllDay,
	}
}
