package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/hray3182/daybook/internal/clock"
	"github.com/hray3182/daybook/internal/config"
	"github.com/hray3182/daybook/internal/planner"
)

func addDay(root *cobra.Command) {
	var (
		userID int64
		date   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "day",
		Short: "Print the resolved plan and actual columns of a day",
		Example: `
daybook day --user 1
daybook day --user 1 --date 2024-03-06 --json
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			be, err := openBackend(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer be.close()

			if date == "" || date == "today" {
				date = be.planner.Today()
			}
			view, err := be.planner.Day(ctx, userID, date)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			printDay(color.Output, view)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "User whose day is printed.")
	cmd.Flags().StringVar(&date, "date", "", `Day to print (YYYY-MM-DD), defaults to today.`)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON.")
	_ = cmd.MarkFlagRequired("user")

	root.AddCommand(cmd)
}

var (
	bold  = color.New(color.Bold, color.Underline)
	faint = color.New(color.Faint)
)

func printDay(w io.Writer, view *planner.DayView) {
	_, _ = fmt.Fprintln(w, bold.Sprint(view.Date))

	wake, sleep := "-", "-"
	if view.WakeSleep.HasWake() {
		wake = view.WakeSleep.WakeTime
	}
	if view.WakeSleep.HasSleep() {
		sleep = view.WakeSleep.SleepTime
	}
	_, _ = fmt.Fprintf(w, "wake %s  sleep %s\n\n", color.YellowString(wake), color.BlueString(sleep))

	printColumn(w, "Plan", view.Plan, color.New(color.FgCyan))
	printColumn(w, "Actual", view.Actual, color.New(color.FgGreen))

	if len(view.Routines) > 0 {
		_, _ = fmt.Fprintln(w, bold.Sprint("Routines"))
		tbl := uitable.New()
		tbl.Separator = "  "
		for _, r := range view.Routines {
			mark := "[ ]"
			if r.Checked {
				mark = color.GreenString("[x]")
			}
			tbl.AddRow(mark, clock.ShortClock(r.Routine.ScheduledTime), r.Routine.Title())
		}
		_, _ = fmt.Fprintln(w, tbl)
		_, _ = fmt.Fprintln(w)
	}

	if view.Note != nil && (view.Note.Mood > 0 || strings.TrimSpace(view.Note.Reflection) != "") {
		_, _ = fmt.Fprintln(w, bold.Sprint("Note"))
		if view.Note.Mood > 0 {
			_, _ = fmt.Fprintf(w, "mood %d/5 %s\n", view.Note.Mood, view.Note.MoodEmoji)
		}
		if r := strings.TrimSpace(view.Note.Reflection); r != "" {
			_, _ = fmt.Fprintln(w, r)
		}
	}
}

func printColumn(w io.Writer, title string, items []planner.Item, c *color.Color) {
	_, _ = fmt.Fprintf(w, "%s %s\n", bold.Sprint(title), faint.Sprintf("- %d", len(items)))
	if len(items) == 0 {
		_, _ = fmt.Fprint(w, faint.Sprint(" none\n\n"))
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48
	tbl.AddRow(faint.Sprint("TIME"), faint.Sprint("LANE"), faint.Sprint("TITLE"))
	for _, item := range items {
		lane := fmt.Sprintf("%d/%d", item.Column+1, item.Columns)
		title := item.Event.Title
		if item.Virtual {
			title = faint.Sprint(title)
		}
		tbl.AddRow(c.Sprint(span(item)), lane, title)
	}
	_, _ = fmt.Fprintln(w, tbl)
	_, _ = fmt.Fprintln(w)
}

func span(item planner.Item) string {
	start := clock.ShortClock(clock.ClockOfMinute(item.StartMinute))
	end := clock.ShortClock(clock.ClockOfMinute(item.EndMinute))
	if item.ContinuesFromPrevious {
		start = "<" + start
	}
	if item.ContinuesToNext {
		end = "24:00>"
	}
	return start + "-" + end
}
