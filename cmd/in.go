package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/attendance-time-calculator/internal/attendance"
	"github.com/Tiliavir/attendance-time-calculator/internal/i18n"
	"github.com/Tiliavir/attendance-time-calculator/internal/timecalc"
	"github.com/Tiliavir/attendance-time-calculator/internal/tracker"
)

var inDate string

var inCmd = &cobra.Command{
	Use:   "in [HH:mm]",
	Short: "Record the check-in time (default: now)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIn,
}

func init() {
	inCmd.Flags().StringVar(&inDate, "date", "", "Date to update (YYYY-MM-DD, default today)")
}

func runIn(cmd *cobra.Command, args []string) error {
	a := openApp()
	defer a.close()

	date := a.dateOrToday(inDate)
	clock, err := clockArg(date, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		a.close()
		os.Exit(1)
	}
	out, err := a.tracker.CheckIn(date, clock)
	if err != nil {
		a.fail(err)
	}
	printOutcome(os.Stdout, a.ctx, out, a.cfg.Rules)
	return nil
}

// clockArg returns the first argument, or the current wall-clock time when
// date is today.
func clockArg(date string, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	now := timeNow()
	if d, err := timecalc.ParseDate(date); err == nil && !timecalc.SameDay(d, now) {
		return "", fmt.Errorf("a time (HH:mm) is required when updating %s", date)
	}
	return timecalc.ClockString(now), nil
}

// printOutcome shows the updated record, any notices and the new totals.
func printOutcome(w io.Writer, ctx context.Context, out tracker.Outcome, rules attendance.Config) {
	rec := out.Record
	if out.ClampedFrom != "" {
		fmt.Fprintln(w, i18n.T(ctx, "info.check_in_clamped", map[string]any{
			"Input":    out.ClampedFrom,
			"Earliest": rules.FlexibleStartEarly,
		}))
	}

	line := fmt.Sprintf("%s  %s", rec.Date, orDash(rec.CheckInTime))
	if rec.CheckOutTime != nil {
		line += "–" + *rec.CheckOutTime
	}
	if rec.EffectiveHours != nil {
		line += fmt.Sprintf("  (%s)", timecalc.FormatHours(*rec.EffectiveHours))
	}
	if rec.AppliedOvertime != nil {
		line += fmt.Sprintf("  +%gh applied", *rec.AppliedOvertime)
	}
	fmt.Fprintln(w, line)

	for _, warn := range out.Warnings {
		fmt.Fprintln(w, i18n.T(ctx, "warning."+string(warn), map[string]any{
			"Date":  rec.Date,
			"Hours": timecalc.FormatHours(*rec.EffectiveHours),
		}))
	}
	fmt.Fprintln(w)
	printResult(w, ctx, nil, out.Result)
}

func orDash(s string) string {
	if s == "" {
		return "--:--"
	}
	return s
}
