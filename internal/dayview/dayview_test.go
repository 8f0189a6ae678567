package dayview

import (
	"testing"
	"time"

	"github.com/hray3182/daybook/internal/clock"
	"github.com/hray3182/daybook/internal/models"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := clock.ParseDate(s)
	if err != nil {
		t.Fatalf("bad date %s: %v", s, err)
	}
	return d
}

func ev(id int64, date, start, end string) models.Event {
	return models.Event{EventID: id, Date: date, StartTime: start, EndTime: end}
}

func ids(placed []Placed) []int64 {
	out := make([]int64, 0, len(placed))
	for _, p := range placed {
		out = append(out, p.Event.EventID)
	}
	return out
}

func TestVisibleOnOvernightBothDays(t *testing.T) {
	overnight := ev(1, "2024-01-10", "23:30:00", "00:15:00")

	first := VisibleOn(day(t, "2024-01-10"), []models.Event{overnight})
	if len(first) != 1 {
		t.Fatalf("expected event on start day, got %v", ids(first))
	}
	second := VisibleOn(day(t, "2024-01-11"), []models.Event{overnight})
	if len(second) != 1 {
		t.Fatalf("expected event on following day, got %v", ids(second))
	}

	for _, p := range []Placed{first[0], second[0]} {
		if got := p.End.Format("2006-01-02T15:04"); got != "2024-01-11T00:15" {
			t.Fatalf("expected effective end 2024-01-11T00:15, got %s", got)
		}
		if got := p.Start.Format("2006-01-02T15:04"); got != "2024-01-10T23:30" {
			t.Fatalf("expected effective start 2024-01-10T23:30, got %s", got)
		}
	}

	if first[0].StartMinute != 23*60+30 || first[0].EndMinute != clock.MinutesPerDay || !first[0].ContinuesToNext {
		t.Fatalf("unexpected display bounds on start day: %+v", first[0])
	}
	if second[0].StartMinute != 0 || second[0].EndMinute != 15 || !second[0].ContinuesFromPrevious {
		t.Fatalf("unexpected display bounds on next day: %+v", second[0])
	}
}

func TestVisibleOnExcludesPreviousDaySameDayEvents(t *testing.T) {
	candidates := []models.Event{
		ev(1, "2024-01-10", "09:00:00", "10:00:00"),
		ev(2, "2024-01-11", "09:00:00", "10:00:00"),
		ev(3, "2024-01-10", "22:00:00", "01:00:00"),
	}
	got := ids(VisibleOn(day(t, "2024-01-11"), candidates))
	if len(got) != 2 || got[0] != 3 || got[1] != 2 {
		t.Fatalf("expected [3 2], got %v", got)
	}
}

func TestVisibleOnInclusiveBoundaries(t *testing.T) {
	endsAtMidnight := ev(1, "2024-01-10", "22:00:00", "00:00:00")
	startsAtLastSecond := ev(2, "2024-01-11", "23:59:59", "00:30:00")

	got := VisibleOn(day(t, "2024-01-11"), []models.Event{endsAtMidnight, startsAtLastSecond})
	if len(got) != 2 {
		t.Fatalf("expected both boundary events, got %v", ids(got))
	}
}

func TestVisibleOnSkipsInvalid(t *testing.T) {
	got := VisibleOn(day(t, "2024-01-11"), []models.Event{ev(1, "2024-01-11", "bogus", "10:00:00")})
	if len(got) != 0 {
		t.Fatalf("expected invalid event to be skipped")
	}
}

func TestSplitColumns(t *testing.T) {
	plan := ev(1, "2024-01-11", "09:00:00", "10:00:00")
	plan.IsPlan = true
	actual := ev(2, "2024-01-11", "09:00:00", "10:00:00")

	p, a := SplitColumns(VisibleOn(day(t, "2024-01-11"), []models.Event{plan, actual}))
	if len(p) != 1 || p[0].Event.EventID != 1 || len(a) != 1 || a[0].Event.EventID != 2 {
		t.Fatalf("unexpected split plan=%v actual=%v", ids(p), ids(a))
	}
}

func sleep(date, start, end string) SleepCandidate {
	return SleepCandidate{
		Event:        models.Event{Date: date, StartTime: start, EndTime: end, Title: SleepTitle},
		CategoryName: "⑤ 잠",
	}
}

func TestResolveWakeLatestEnd(t *testing.T) {
	got := ResolveWakeSleep(day(t, "2024-03-02"), []SleepCandidate{
		sleep("2024-03-01", "23:00:00", "07:30:00"),
		sleep("2024-03-01", "23:45:00", "07:00:00"),
	})
	if got.WakeTime != "07:30" {
		t.Fatalf("expected wake 07:30, got %q", got.WakeTime)
	}
	if got.WakeAt == nil || got.WakeAt.Format("2006-01-02T15:04") != "2024-03-02T07:30" {
		t.Fatalf("unexpected wake instant %v", got.WakeAt)
	}
	if got.HasSleep() {
		t.Fatalf("expected no sleep, got %q", got.SleepTime)
	}
}

func TestResolveSleepAfterWake(t *testing.T) {
	got := ResolveWakeSleep(day(t, "2024-03-02"), []SleepCandidate{
		sleep("2024-03-03", "22:00:00", "06:00:00"),
		sleep("2024-03-02", "05:00:00", "06:00:00"),
		sleep("2024-03-01", "23:00:00", "07:30:00"),
		sleep("2024-03-02", "23:10:00", "06:50:00"),
	})
	if got.WakeTime != "07:30" {
		t.Fatalf("expected wake 07:30, got %q", got.WakeTime)
	}
	if got.SleepTime != "23:10" {
		t.Fatalf("expected sleep 23:10, got %q", got.SleepTime)
	}
	if got.SleepAt.Format("2006-01-02T15:04") != "2024-03-02T23:10" {
		t.Fatalf("unexpected sleep instant %v", got.SleepAt)
	}
}

func TestResolveSleepWithoutWake(t *testing.T) {
	got := ResolveWakeSleep(day(t, "2024-03-05"), []SleepCandidate{
		sleep("2024-03-06", "21:00:00", "05:00:00"),
		sleep("2024-03-05", "22:00:00", "06:00:00"),
	})
	if got.HasWake() {
		t.Fatalf("expected no wake, got %q", got.WakeTime)
	}
	if got.SleepTime != "22:00" {
		t.Fatalf("expected sleep 22:00, got %q", got.SleepTime)
	}
}

func TestResolveIgnoresPlanAndOtherTitles(t *testing.T) {
	plan := sleep("2024-03-01", "23:00:00", "07:30:00")
	plan.Event.IsPlan = true
	other := sleep("2024-03-01", "23:00:00", "08:00:00")
	other.Event.Title = "reading"
	wrongCategory := sleep("2024-03-01", "23:00:00", "08:30:00")
	wrongCategory.CategoryName = "rest"
	flagged := SleepCandidate{Event: models.Event{Date: "2024-03-01", StartTime: "22:00:00", EndTime: "06:10:00", IsSleep: true}}

	got := ResolveWakeSleep(day(t, "2024-03-02"), []SleepCandidate{plan, other, wrongCategory, flagged})
	if got.WakeTime != "06:10" {
		t.Fatalf("expected only the flagged event to count, got %q", got.WakeTime)
	}
}

func TestResolveEmpty(t *testing.T) {
	got := ResolveWakeSleep(day(t, "2024-03-02"), nil)
	if got.HasWake() || got.HasSleep() || got.WakeTime != "" || got.SleepTime != "" {
		t.Fatalf("expected empty result, got %+v", got)
	}
}

func TestWindowDates(t *testing.T) {
	from, to := WindowDates(day(t, "2024-03-01"))
	if from != "2024-02-29" || to != "2024-03-02" {
		t.Fatalf("unexpected window %s..%s", from, to)
	}
}
