package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var overtimeDate string

var overtimeCmd = &cobra.Command{
	Use:   "overtime <hours>",
	Short: "Declare applied overtime for a day (multiples of 0.5h)",
	Long: `Applied overtime is time worked beyond the standard day that is claimed
separately. It is subtracted from the day's effective hours. It must be
between 0 and 8 hours, a multiple of 0.5 and not more than the overtime
actually worked.`,
	Args: cobra.ExactArgs(1),
	RunE: runOvertime,
}

func init() {
	overtimeCmd.Flags().StringVar(&overtimeDate, "date", "", "Date to update (YYYY-MM-DD, default today)")
}

func runOvertime(cmd *cobra.Command, args []string) error {
	hours, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid hours %q: %v\n", args[0], err)
		os.Exit(1)
	}

	a := openApp()
	defer a.close()

	out, err := a.tracker.ApplyOvertime(a.dateOrToday(overtimeDate), hours)
	if err != nil {
		a.fail(err)
	}
	printOutcome(os.Stdout, a.ctx, out, a.cfg.Rules)
	return nil
}
