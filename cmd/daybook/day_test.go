package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/hray3182/daybook/internal/dayview"
	"github.com/hray3182/daybook/internal/models"
	"github.com/hray3182/daybook/internal/planner"
)

func TestPrintDay(t *testing.T) {
	color.NoColor = true
	wake := time.Date(2024, 3, 6, 7, 10, 0, 0, time.UTC)
	view := &planner.DayView{
		Date: "2024-03-06",
		Plan: []planner.Item{
			{Event: models.Event{Title: "deep work"}, StartMinute: 540, EndMinute: 660, Column: 0, Columns: 2},
			{Event: models.Event{Title: "call"}, StartMinute: 600, EndMinute: 630, Column: 1, Columns: 2},
		},
		Actual: []planner.Item{
			{Event: models.Event{Title: "잠"}, StartMinute: 0, EndMinute: 430, ContinuesFromPrevious: true, Columns: 1},
		},
		WakeSleep: dayview.WakeSleep{WakeTime: "07:10", WakeAt: &wake},
		Note:      &models.DailyNote{Mood: 4, Reflection: "good focus"},
	}

	var buf bytes.Buffer
	printDay(&buf, view)
	out := buf.String()

	for _, want := range []string{
		"wake 07:10  sleep -",
		"Plan - 2",
		"09:00-11:00  1/2   deep work",
		"10:00-10:30  2/2   call",
		"<00:00-07:10  1/1   잠",
		"mood 4/5",
		"good focus",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output misses %q:\n%s", want, out)
		}
	}
}

func TestPrintDayEmpty(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	printDay(&buf, &planner.DayView{Date: "2024-03-06"})
	if strings.Count(buf.String(), "none") != 2 {
		t.Fatalf("expected both columns empty:\n%s", buf.String())
	}
}

func TestReadInputStdin(t *testing.T) {
	body, err := readInput(strings.NewReader("BEGIN:VCALENDAR"), "-")
	if err != nil || string(body) != "BEGIN:VCALENDAR" {
		t.Fatalf("readInput = %q, %v", body, err)
	}
	if _, err := readInput(nil, "/does/not/exist.ics"); err == nil {
		t.Fatal("expected missing file to fail")
	}
}
