package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var noteDate string

var noteCmd = &cobra.Command{
	Use:   "note <text>",
	Short: "Set the note of a day",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runNote,
}

func init() {
	noteCmd.Flags().StringVar(&noteDate, "date", "", "Date to update (YYYY-MM-DD, default today)")
}

func runNote(cmd *cobra.Command, args []string) error {
	a := openApp()
	defer a.close()

	out, err := a.tracker.SetNote(a.dateOrToday(noteDate), strings.Join(args, " "))
	if err != nil {
		a.fail(err)
	}
	printOutcome(os.Stdout, a.ctx, out, a.cfg.Rules)
	return nil
}
