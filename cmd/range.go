package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/attendance-time-calculator/internal/timecalc"
)

var (
	rangeWeek   bool
	filterClear bool
)

var rangeCmd = &cobra.Command{
	Use:   "range <start> [end]",
	Short: "Start a new active range of up to seven days",
	Long: `Creates one record per date in [start, end] (YYYY-MM-DD) and merges records
already stored for those dates. Without end the range is a single day.
With --week the range is Monday to Friday of the current week.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if rangeWeek {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.RangeArgs(1, 2)(cmd, args)
	},
	RunE: runRange,
}

var filterCmd = &cobra.Command{
	Use:   "filter [<from> <to>]",
	Short: "Restrict aggregation to part of the active range",
	Args: func(cmd *cobra.Command, args []string) error {
		if filterClear {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: runFilter,
}

func init() {
	rangeCmd.Flags().BoolVar(&rangeWeek, "week", false, "Use Monday to Friday of the current week")
	filterCmd.Flags().BoolVar(&filterClear, "clear", false, "Remove the filter")
}

func runRange(cmd *cobra.Command, args []string) error {
	a := openApp()
	defer a.close()

	start, end := rangeArgs(timeNow(), rangeWeek, args)
	if err := a.tracker.NewRange(start, end); err != nil {
		a.fail(err)
	}

	r := a.tracker.Range()
	fmt.Printf("Active range %s → %s (%d days)\n", r.Start, r.End, len(a.tracker.Records()))
	return nil
}

// rangeArgs resolves the range bounds from the arguments or the --week flag.
func rangeArgs(now time.Time, week bool, args []string) (string, string) {
	if week {
		monday, friday := timecalc.WorkWeek(now)
		return monday.Format(timecalc.DateLayout), friday.Format(timecalc.DateLayout)
	}
	end := ""
	if len(args) == 2 {
		end = args[1]
	}
	return args[0], end
}

func runFilter(cmd *cobra.Command, args []string) error {
	a := openApp()
	defer a.close()

	var err error
	if filterClear {
		err = a.tracker.ClearFilter()
	} else {
		err = a.tracker.SetFilter(args[0], args[1])
	}
	if err != nil {
		a.fail(err)
	}

	res, err := a.tracker.Result()
	if err != nil {
		a.fail(err)
	}
	printResult(os.Stdout, a.ctx, a.tracker.Range(), res)
	return nil
}
