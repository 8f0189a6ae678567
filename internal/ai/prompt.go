package ai

import (
	"fmt"
	"strings"

	"github.com/hray3182/daybook/internal/clock"
	"github.com/hray3182/daybook/internal/planner"
)

func writeColumn(b *strings.Builder, heading string, items []planner.Item) {
	fmt.Fprintf(b, "%s:\n", heading)
	if len(items) == 0 {
		b.WriteString("- (nothing)\n")
		return
	}
	for _, it := range items {
		title := it.Event.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(b, "- %s-%s %s", clock.ShortClock(it.Event.StartTime), clock.ShortClock(it.Event.EndTime), title)
		if it.ContinuesFromPrevious {
			b.WriteString(" (from previous day)")
		}
		if it.ContinuesToNext {
			b.WriteString(" (until next day)")
		}
		if it.Virtual {
			b.WriteString(" [routine]")
		}
		b.WriteByte('\n')
	}
}

// BuildDayPrompt renders a day view as the user message of a feedback request.
func BuildDayPrompt(view *planner.DayView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n\n", view.Date)

	writeColumn(&b, "Plan", view.Plan)
	b.WriteByte('\n')
	writeColumn(&b, "Actual", view.Actual)
	b.WriteByte('\n')

	wake, sleep := "unknown", "unknown"
	if view.WakeSleep.HasWake() {
		wake = view.WakeSleep.WakeTime
	}
	if view.WakeSleep.HasSleep() {
		sleep = view.WakeSleep.SleepTime
	}
	fmt.Fprintf(&b, "Woke up: %s\nWent to sleep: %s\n", wake, sleep)

	if len(view.Routines) > 0 {
		b.WriteString("\nRoutines:\n")
		for _, r := range view.Routines {
			mark := " "
			if r.Checked {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", mark, r.Routine.Title())
		}
	}

	if len(view.Todos) > 0 {
		b.WriteString("\nTodos:\n")
		for _, t := range view.Todos {
			mark := " "
			if t.IsCompleted() {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", mark, t.Title)
		}
	}

	if view.Note != nil {
		if view.Note.Mood > 0 {
			fmt.Fprintf(&b, "\nMood: %d/5 %s\n", view.Note.Mood, view.Note.MoodEmoji)
		}
		if r := strings.TrimSpace(view.Note.Reflection); r != "" {
			fmt.Fprintf(&b, "\nReflection:\n%s\n", r)
		}
	}

	return b.String()
}
