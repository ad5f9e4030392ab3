package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var outDate string

var outCmd = &cobra.Command{
	Use:   "out [HH:mm]",
	Short: "Record the check-out time (default: now)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runOut,
}

func init() {
	outCmd.Flags().StringVar(&outDate, "date", "", "Date to update (YYYY-MM-DD, default today)")
}

func runOut(cmd *cobra.Command, args []string) error {
	a := openApp()
	defer a.close()

	date := a.dateOrToday(outDate)
	clock, err := clockArg(date, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		a.close()
		os.Exit(1)
	}
	out, err := a.tracker.CheckOut(date, clock)
	if err != nil {
		a.fail(err)
	}
	printOutcome(os.Stdout, a.ctx, out, a.cfg.Rules)
	return nil
}
