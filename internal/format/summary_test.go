package format

import (
	"strings"
	"testing"
	"time"

	"github.com/hray3182/daybook/internal/dayview"
	"github.com/hray3182/daybook/internal/models"
	"github.com/hray3182/daybook/internal/planner"
)

func TestDailySummary(t *testing.T) {
	routineID := int64(7)
	wake := time.Date(2024, 3, 6, 6, 40, 0, 0, time.UTC)
	view := &planner.DayView{
		Date: "2024-03-06",
		Plan: []planner.Item{
			{Event: models.Event{Title: "비행", StartTime: "22:00:00", EndTime: "02:00:00"}, StartMinute: 0, EndMinute: 120, ContinuesFromPrevious: true},
			{Event: models.Event{Title: "산책", RoutineID: &routineID}, StartMinute: 420, EndMinute: 450},
			{Event: models.Event{Title: "야간 근무", StartTime: "23:00:00", EndTime: "07:00:00"}, StartMinute: 1380, EndMinute: 1440, ContinuesToNext: true},
		},
		WakeSleep: dayview.WakeSleep{WakeTime: "06:40", WakeAt: &wake},
		Routines: []planner.RoutineStatus{
			{Routine: &models.Routine{Text: "산책", Emoji: "🚶", ScheduledTime: "07:00:00"}, Checked: true},
		},
	}
	for i := 0; i < 12; i++ {
		view.Todos = append(view.Todos, &models.Todo{Title: "할 일"})
	}

	msg := DailySummary(view, time.Date(2024, 3, 6, 7, 0, 0, 0, time.UTC))

	for _, want := range []string{
		"좋은 아침이에요",
		"2024/03/06 (수)",
		"기상 06:40",
		"~00:00-02:00 비행",
		"23:00-07:00+1 야간 근무",
		"✅ 07:00 🚶 산책",
		"...외 2개",
	} {
		if !strings.Contains(msg.Text, want) {
			t.Fatalf("summary misses %q:\n%s", want, msg.Text)
		}
	}
	if strings.Count(msg.Text, "산책") != 1 {
		t.Fatalf("routine projections must only appear in the routine section:\n%s", msg.Text)
	}
	if len(msg.Entities) == 0 || msg.Entities[0].Type != "bold" {
		t.Fatalf("expected the greeting in bold, got %+v", msg.Entities)
	}
}

func TestDailySummaryEmpty(t *testing.T) {
	msg := DailySummary(&planner.DayView{Date: "2024-03-06"}, time.Date(2024, 3, 6, 19, 0, 0, 0, time.UTC))
	for _, want := range []string{"좋은 저녁이에요", "계획된 일정이 없어요", "남은 할 일이 없어요"} {
		if !strings.Contains(msg.Text, want) {
			t.Fatalf("summary misses %q:\n%s", want, msg.Text)
		}
	}
}
