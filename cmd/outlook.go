package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/attendance-time-calculator/internal/msgraph"
	"github.com/Tiliavir/attendance-time-calculator/internal/timecalc"
)

// outlookDefaultDays is the look-ahead window when only --from is given.
const outlookDefaultDays = 30

var (
	outlookSyncFrom   string
	outlookSyncTo     string
	outlookSyncDate   string
	outlookSyncDryRun bool
	outlookSyncTZ     string
)

var outlookCmd = &cobra.Command{
	Use:   "outlook",
	Short: "Outlook calendar integration",
}

var outlookSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import out-of-office days from Outlook as personal days off",
	Long: `Imports all-day Outlook events shown as "out of office" as personal days
off. Manually entered days off are never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runOutlookSync,
}

func init() {
	outlookSyncCmd.Flags().StringVar(&outlookSyncFrom, "from", "", "Start date (YYYY-MM-DD); defaults to today")
	outlookSyncCmd.Flags().StringVar(&outlookSyncTo, "to", "", "End date (YYYY-MM-DD); defaults to 30 days after --from")
	outlookSyncCmd.Flags().StringVar(&outlookSyncDate, "date", "", "Sync a single date (YYYY-MM-DD)")
	outlookSyncCmd.Flags().BoolVar(&outlookSyncDryRun, "dry-run", false, "Show what would be imported without saving")
	outlookSyncCmd.Flags().StringVar(&outlookSyncTZ, "timezone", "", "IANA timezone for event times (default outlook.timezone)")
	outlookCmd.AddCommand(outlookSyncCmd)
}

// syncWindow resolves the --date/--from/--to flags into an inclusive date range.
func syncWindow(now time.Time, date, from, to string) (time.Time, time.Time, error) {
	if date != "" {
		d, err := timecalc.ParseDate(date)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --date value: %w", err)
		}
		return d, d, nil
	}

	start := timecalc.StartOfDay(now)
	if from != "" {
		d, err := timecalc.ParseDate(from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from value: %w", err)
		}
		start = d
	}
	end := start.AddDate(0, 0, outlookDefaultDays)
	if to != "" {
		d, err := timecalc.ParseDate(to)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to value: %w", err)
		}
		end = d
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to %s is before --from %s",
			end.Format(timecalc.DateLayout), start.Format(timecalc.DateLayout))
	}
	return start, end, nil
}

func runOutlookSync(cmd *cobra.Command, args []string) error {
	from, to, err := syncWindow(timeNow(), outlookSyncDate, outlookSyncFrom, outlookSyncTo)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	a := openApp()
	defer a.close()

	timezone := outlookSyncTZ
	if timezone == "" {
		timezone = a.cfg.Outlook.Timezone
	}

	dryTag := ""
	if outlookSyncDryRun {
		dryTag = " [dry-run]"
	}
	fmt.Printf("Syncing Outlook days off (%s → %s)%s...\n",
		from.Format(timecalc.DateLayout), to.Format(timecalc.DateLayout), dryTag)
	fmt.Println()

	tok, oauthCfg, err := msgraph.Authenticate(a.ctx, msgraph.Auth{
		TenantID:  a.cfg.Outlook.TenantID,
		ClientID:  a.cfg.Outlook.ClientID,
		TokenPath: msgraph.TokenFilePath(a.base),
		Prompt:    os.Stdout,
		Logger:    a.logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Authentication failed: %v\n", err)
		a.close()
		os.Exit(1)
	}

	client := msgraph.NewClient(a.ctx, tok, oauthCfg, msgraph.TokenFilePath(a.base))
	events, err := client.GetCalendarView(a.ctx, from, to.AddDate(0, 0, 1), timezone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch calendar events: %v\n", err)
		a.close()
		os.Exit(2)
	}

	existing, err := a.holidays.DaysOff()
	if err != nil {
		a.fail(err)
	}
	list, result := msgraph.SyncDaysOff(events, existing, msgraph.SyncOptions{
		From:     from,
		To:       to,
		Timezone: timezone,
		DryRun:   outlookSyncDryRun,
		Out:      os.Stdout,
	})
	if !outlookSyncDryRun && result.Imported+result.Updated > 0 {
		if err := a.holidays.SaveDaysOff(list); err != nil {
			a.fail(err)
		}
	}

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  %d imported\n", result.Imported)
	fmt.Printf("  %d skipped\n", result.Skipped)
	fmt.Printf("  %d updated\n", result.Updated)
	if result.Errors > 0 {
		fmt.Printf("  %d errors\n", result.Errors)
		a.close()
		os.Exit(2)
	}
	return nil
}
