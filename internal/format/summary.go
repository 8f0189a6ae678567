package format

import (
	"fmt"
	"time"

	"github.com/hray3182/daybook/internal/clock"
	"github.com/hray3182/daybook/internal/planner"
)

const maxSummaryTodos = 10

var weekdayNames = [...]string{"일", "월", "화", "수", "목", "금", "토"}

// DailySummary renders the morning message for view. now is already in
// the user's timezone.
func DailySummary(view *planner.DayView, now time.Time) Message {
	var b Builder

	b.Text("☀️ ").Bold(getGreeting(now.Hour())).Line("").Line("")
	b.Line(fmt.Sprintf("📅 %s (%s)", now.Format("2006/01/02"), weekdayNames[now.Weekday()]))
	if view.WakeSleep.HasWake() {
		b.Line("⏰ 기상 " + view.WakeSleep.WakeTime)
	}

	b.Line("").Bold("오늘 계획").Line("")
	planned := 0
	for _, item := range view.Plan {
		if item.Event.RoutineID != nil {
			continue
		}
		planned++
		b.Text("• ").Code(itemSpan(item)).Line(" " + item.Event.Title)
	}
	if planned == 0 {
		b.Line("• 계획된 일정이 없어요")
	}

	if len(view.Routines) > 0 {
		b.Line("").Bold("루틴").Line("")
		for _, r := range view.Routines {
			mark := "⬜"
			if r.Checked {
				mark = "✅"
			}
			b.Line(fmt.Sprintf("%s %s %s", mark, clock.ShortClock(r.Routine.ScheduledTime), r.Routine.Title()))
		}
	}

	b.Line("").Bold("할 일").Line("")
	open := 0
	for _, todo := range view.Todos {
		if todo.IsCompleted() {
			continue
		}
		open++
		if open <= maxSummaryTodos {
			b.Line("• " + todo.Title)
		}
	}
	switch {
	case open == 0:
		b.Line("• 남은 할 일이 없어요")
	case open > maxSummaryTodos:
		b.Line(fmt.Sprintf("• ...외 %d개", open-maxSummaryTodos))
	}

	b.Line("").Italic("좋은 하루 보내세요!").Text(" 💪")
	return b.Message()
}

// itemSpan formats the visible part of an item, marking edges that belong to
// the neighbouring days.
func itemSpan(item planner.Item) string {
	start := clock.ShortClock(clock.ClockOfMinute(item.StartMinute))
	end := clock.ShortClock(clock.ClockOfMinute(item.EndMinute))
	if item.ContinuesFromPrevious {
		start = "~" + start
	}
	if item.ContinuesToNext {
		end = clock.ShortClock(item.Event.EndTime) + "+1"
	}
	return start + "-" + end
}

func getGreeting(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "좋은 아침이에요"
	case hour >= 12 && hour < 18:
		return "좋은 오후예요"
	default:
		return "좋은 저녁이에요"
	}
}
