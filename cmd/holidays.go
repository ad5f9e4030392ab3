package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/attendance-time-calculator/internal/holiday"
	"github.com/Tiliavir/attendance-time-calculator/internal/timecalc"
)

var (
	holidaysYear  int
	holidaysForce bool
)

var holidaysCmd = &cobra.Command{
	Use:   "holidays",
	Short: "Public holidays and personal days off",
}

var holidaysSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch the public holidays of a year",
	Long: `Fetches the public holidays from the holiday API. The answer is cached for
the rest of the month; --force fetches again. When the API is unreachable the
built-in list is used where one exists.`,
	Args: cobra.NoArgs,
	RunE: runHolidaysSync,
}

var holidaysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List holidays and days off of a year",
	Args:  cobra.NoArgs,
	RunE:  runHolidaysList,
}

var holidaysOffCmd = &cobra.Command{
	Use:   "off <date> [reason]",
	Short: "Mark a date as a personal day off",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runHolidaysOff,
}

var holidaysOnCmd = &cobra.Command{
	Use:   "on <date>",
	Short: "Remove a personal day off",
	Args:  cobra.ExactArgs(1),
	RunE:  runHolidaysOn,
}

func init() {
	holidaysSyncCmd.Flags().IntVar(&holidaysYear, "year", 0, "Year to sync (default current year)")
	holidaysSyncCmd.Flags().BoolVar(&holidaysForce, "force", false, "Ignore the cache")
	holidaysListCmd.Flags().IntVar(&holidaysYear, "year", 0, "Year to list (default current year)")

	holidaysCmd.AddCommand(holidaysSyncCmd)
	holidaysCmd.AddCommand(holidaysListCmd)
	holidaysCmd.AddCommand(holidaysOffCmd)
	holidaysCmd.AddCommand(holidaysOnCmd)
}

func yearOrCurrent(year int) int {
	if year != 0 {
		return year
	}
	return timeNow().Year()
}

func runHolidaysSync(cmd *cobra.Command, args []string) error {
	a := openApp()
	defer a.close()

	ctx, cancel := context.WithTimeout(a.ctx, 30*time.Second)
	defer cancel()

	res, err := a.holidays.Sync(ctx, yearOrCurrent(holidaysYear), holidaysForce)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Holiday sync failed: %v\n", err)
		a.close()
		os.Exit(2)
	}
	fmt.Printf("✓ %d holidays for %d (%s, synced %s)\n",
		res.Count, res.Year, res.Origin, res.SyncedAt.Format("2006-01-02 15:04"))
	return nil
}

func runHolidaysList(cmd *cobra.Command, args []string) error {
	a := openApp()
	defer a.close()

	year := yearOrCurrent(holidaysYear)
	holidays, err := a.holidays.Holidays(year)
	if err != nil {
		a.fail(err)
	}
	daysOff, err := a.holidays.DaysOff()
	if err != nil {
		a.fail(err)
	}
	printHolidays(os.Stdout, year, holidays, daysOff)
	return nil
}

// printHolidays lists the holidays and days off of year in date order.
func printHolidays(w io.Writer, year int, holidays []holiday.Holiday, daysOff []holiday.DayOff) {
	prefix := fmt.Sprintf("%d-", year)
	if len(holidays) == 0 {
		fmt.Fprintf(w, "No holidays known for %d. Run: atc holidays sync --year %d\n", year, year)
	}
	for _, h := range holidays {
		fmt.Fprintf(w, "%s  %s\n", h.Date, h.Name)
	}

	header := false
	for _, d := range daysOff {
		if len(d.Date) < len(prefix) || d.Date[:len(prefix)] != prefix {
			continue
		}
		if !header {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Days off:")
			header = true
		}
		fmt.Fprintf(w, "%s  %s (%s)\n", d.Date, d.Reason, d.Source)
	}
}

func runHolidaysOff(cmd *cobra.Command, args []string) error {
	date := args[0]
	if _, err := timecalc.ParseDate(date); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	reason := "Day off"
	if len(args) == 2 {
		reason = args[1]
	}

	a := openApp()
	defer a.close()

	list, err := a.holidays.DaysOff()
	if err != nil {
		a.fail(err)
	}
	list, changed := holiday.UpsertDayOff(list, holiday.DayOff{Date: date, Reason: reason, Source: holiday.SourceManual})
	if !changed {
		fmt.Printf("%s is already a day off.\n", date)
		return nil
	}
	if err := a.holidays.SaveDaysOff(list); err != nil {
		a.fail(err)
	}
	fmt.Printf("✓ %s marked as day off (%s)\n", date, reason)
	return nil
}

func runHolidaysOn(cmd *cobra.Command, args []string) error {
	a := openApp()
	defer a.close()

	list, err := a.holidays.DaysOff()
	if err != nil {
		a.fail(err)
	}
	list, removed := holiday.RemoveDayOff(list, args[0])
	if !removed {
		fmt.Fprintf(os.Stderr, "%s is not a day off.\n", args[0])
		a.close()
		os.Exit(1)
	}
	if err := a.holidays.SaveDaysOff(list); err != nil {
		a.fail(err)
	}
	fmt.Printf("✓ %s is a work day again\n", args[0])
	return nil
}
