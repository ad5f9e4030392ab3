package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/attendance-time-calculator/internal/tracker"
)

var clearDate string

var clearCmd = &cobra.Command{
	Use:   "clear <in|out|overtime|note>",
	Short: "Remove a field from a day",
	Long: `Clearing the check-in empties the day (check-out and applied overtime go
with it). Clearing the check-out reopens the day.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(tracker.FieldCheckIn), string(tracker.FieldCheckOut), string(tracker.FieldOvertime), string(tracker.FieldNotes)},
	RunE:      runClear,
}

func init() {
	clearCmd.Flags().StringVar(&clearDate, "date", "", "Date to update (YYYY-MM-DD, default today)")
}

func runClear(cmd *cobra.Command, args []string) error {
	if err := cobra.OnlyValidArgs(cmd, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	a := openApp()
	defer a.close()

	out, err := a.tracker.Clear(a.dateOrToday(clearDate), tracker.Field(args[0]))
	if err != nil {
		a.fail(err)
	}
	printOutcome(os.Stdout, a.ctx, out, a.cfg.Rules)
	return nil
}
