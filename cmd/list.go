package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/attendance-time-calculator/internal/holiday"
	"github.com/Tiliavir/attendance-time-calculator/internal/i18n"
	"github.com/Tiliavir/attendance-time-calculator/internal/model"
	"github.com/Tiliavir/attendance-time-calculator/internal/tracker"
)

var listAll bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the records of the active range",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listAll, "all", false, "Ignore the filter and show the whole range")
}

func runList(cmd *cobra.Command, args []string) error {
	a := openApp()
	defer a.close()

	if a.tracker.Range() == nil {
		a.fail(tracker.ErrNoRange)
	}

	records := a.tracker.View()
	if listAll {
		records = a.tracker.Records()
	}

	cal, err := a.tracker.Calendar()
	if err != nil {
		a.logger.Warn().Err(err).Msg("holidays unavailable")
		cal = holiday.NewCalendar(nil, nil)
	}
	printList(os.Stdout, a.ctx, records, cal)
	return nil
}

// printList prints one line per record. Days off show their reason in the notes column.
func printList(w io.Writer, ctx context.Context, records []model.Record, cal holiday.Calendar) {
	const rowFmt = "%-10s  %-5s  %-5s  %7s  %9s  %8s  %s\n"
	fmt.Fprintf(w, rowFmt,
		i18n.T(ctx, "list.date"), i18n.T(ctx, "list.in"), i18n.T(ctx, "list.out"),
		i18n.T(ctx, "list.applied"), i18n.T(ctx, "list.effective"), i18n.T(ctx, "list.overtime"),
		i18n.T(ctx, "list.notes"))

	for _, r := range records {
		out := ""
		if r.CheckOutTime != nil {
			out = *r.CheckOutTime
		}
		notes := r.Notes
		if reason, off := cal.Reason(r.Date); off {
			label := fmt.Sprintf("[%s: %s]", i18n.T(ctx, "list.off"), reason)
			if notes != "" {
				label += " " + notes
			}
			notes = label
		}
		fmt.Fprintf(w, rowFmt,
			r.Date,
			r.CheckInTime,
			out,
			hoursCell(r.AppliedOvertime),
			hoursCell(r.EffectiveHours),
			hoursCell(r.Overtime),
			notes,
		)
	}
}

func hoursCell(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}
