package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/attendance-time-calculator/internal/attendance"
	"github.com/Tiliavir/attendance-time-calculator/internal/i18n"
	"github.com/Tiliavir/attendance-time-calculator/internal/model"
	"github.com/Tiliavir/attendance-time-calculator/internal/timecalc"
)

var statusFormat string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the totals of the active range and today's leave time",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", "text", "Output format: text, json, yaml")
}

// statusView is the machine-readable status output.
type statusView struct {
	Range  *model.ActiveRange `json:"range" yaml:"range"`
	Result attendance.Result  `json:"result" yaml:"result"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	a := openApp()
	defer a.close()

	res, err := a.tracker.Result()
	if err != nil {
		a.fail(err)
	}

	if err := writeStatus(os.Stdout, a.ctx, statusFormat, a.tracker.Range(), res); err != nil {
		fmt.Fprintln(os.Stderr, err)
		a.close()
		os.Exit(1)
	}
	return nil
}

func writeStatus(w io.Writer, ctx context.Context, format string, r *model.ActiveRange, res attendance.Result) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(statusView{Range: r, Result: res})
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(statusView{Range: r, Result: res}); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		printResult(w, ctx, r, res)
		return nil
	default:
		return fmt.Errorf("unknown format %q (use text, json or yaml)", format)
	}
}

// printResult renders a calculation result as aligned label/value lines.
// The range header is omitted when r is nil.
func printResult(w io.Writer, ctx context.Context, r *model.ActiveRange, res attendance.Result) {
	row := func(id, value string) {
		fmt.Fprintf(w, "%-16s %s\n", i18n.T(ctx, id), value)
	}

	if r != nil {
		row("status.range", fmt.Sprintf("%s → %s", r.Start, r.End))
		if r.FilterStart != "" {
			row("status.filter", fmt.Sprintf("%s → %s", r.FilterStart, r.FilterEnd))
		}
	}
	if res.WeekID != "" {
		row("status.week", res.WeekID)
	}
	row("status.work_days", fmt.Sprintf("%d", res.WorkDays))
	row("status.day_count", fmt.Sprintf("%d", res.DayCount))
	row("status.total", timecalc.FormatHours(res.TotalEffectiveHours))
	row("status.required", timecalc.FormatHours(res.RequiredHours))
	if res.RemainingHours < 0 {
		row("status.surplus", timecalc.FormatHours(-res.RemainingHours))
	} else {
		row("status.remaining", timecalc.FormatHours(res.RemainingHours))
	}

	if res.TodayOffTime == nil {
		fmt.Fprintln(w, i18n.T(ctx, "status.no_projection"))
		return
	}
	row("status.today_off", *res.TodayOffTime)
	if res.TodayRequired != nil {
		row("status.today_required", timecalc.FormatHours(*res.TodayRequired))
	}
	if res.TodayOvertime != nil && *res.TodayOvertime > 0 {
		row("status.today_overtime", timecalc.FormatHours(*res.TodayOvertime))
	}
}
