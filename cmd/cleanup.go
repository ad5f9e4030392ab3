package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanupDays int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete stored days older than the retention window",
	Args:  cobra.NoArgs,
	RunE:  runCleanup,
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 0, "Keep this many days (default storage.retention_days)")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	a := openApp()
	defer a.close()

	days := cleanupDays
	if days == 0 {
		days = a.cfg.Storage.RetentionDays
	}
	n, err := a.tracker.Cleanup(days)
	if err != nil {
		a.fail(err)
	}
	fmt.Printf("Deleted %d stored days older than %d days.\n", n, days)
	return nil
}
