package msgraph

import (
	"fmt"
	"io"
	"time"

	"github.com/Tiliavir/attendance-time-calculator/internal/holiday"
	"github.com/Tiliavir/attendance-time-calculator/internal/timecalc"
)

// SyncResult holds counters for a sync operation.
type SyncResult struct {
	Imported int
	Skipped  int
	Updated  int
	Errors   int
}

// SyncOptions configures a sync run. Only dates in [From, To] are imported.
type SyncOptions struct {
	From     time.Time
	To       time.Time
	Timezone string
	DryRun   bool
	Out      io.Writer
}

// parseGraphTime parses a Graph API dateTime string in the given timezone.
// Graph returns times like "2026-02-27T09:00:00.0000000" without a zone suffix
// when a Prefer: outlook.timezone header is set.
func parseGraphTime(dt, tz string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, dt); err == nil {
		return t, nil
	}

	loc := time.UTC
	if tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, dt, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse graph time %q", dt)
}

// IsDayOff reports whether the event marks the user as away for whole days.
func IsDayOff(event CalendarEvent) bool {
	return !event.IsCancelled && event.IsAllDay && event.ShowAs == "oof" &&
		event.Start.DateTime != "" && event.End.DateTime != ""
}

// MapEventToDaysOff expands an all-day event into one DayOff per covered date.
// The end of an all-day event is exclusive.
func MapEventToDaysOff(event CalendarEvent, timezone string) ([]holiday.DayOff, error) {
	start, err := parseGraphTime(event.Start.DateTime, timezone)
	if err != nil {
		return nil, fmt.Errorf("parsing start time: %w", err)
	}
	end, err := parseGraphTime(event.End.DateTime, timezone)
	if err != nil {
		return nil, fmt.Errorf("parsing end time: %w", err)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("event ends before it starts")
	}

	reason := event.Subject
	if event.Sensitivity == "private" || reason == "" {
		reason = "Out of office"
	}

	var out []holiday.DayOff
	for d := timecalc.StartOfDay(start); d.Before(end); d = d.AddDate(0, 0, 1) {
		out = append(out, holiday.DayOff{
			Date:       d.Format(timecalc.DateLayout),
			Reason:     reason,
			Source:     holiday.SourceOutlook,
			ExternalID: event.ID,
		})
	}
	return out, nil
}

func findByDate(list []holiday.DayOff, date string) *holiday.DayOff {
	for i := range list {
		if list[i].Date == date {
			return &list[i]
		}
	}
	return nil
}

// SyncDaysOff merges out-of-office events into existing and returns the new
// list. Manually entered days off are never overwritten. In a dry run the
// returned list equals existing.
func SyncDaysOff(events []CalendarEvent, existing []holiday.DayOff, opts SyncOptions) ([]holiday.DayOff, SyncResult) {
	var result SyncResult
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	from := opts.From.Format(timecalc.DateLayout)
	to := opts.To.Format(timecalc.DateLayout)

	list := append([]holiday.DayOff(nil), existing...)
	for _, event := range events {
		if !IsDayOff(event) {
			continue
		}

		days, err := MapEventToDaysOff(event, opts.Timezone)
		if err != nil {
			fmt.Fprintf(out, "  ! Error mapping event %q: %v\n", event.Subject, err)
			result.Errors++
			continue
		}

		for _, day := range days {
			if day.Date < from || day.Date > to {
				continue
			}
			found := findByDate(list, day.Date)
			switch {
			case found != nil && (*found == day || found.Source != holiday.SourceOutlook):
				fmt.Fprintf(out, "  – Skipped:  %s %s (already exists)\n", day.Date, day.Reason)
				result.Skipped++
				continue
			case found != nil:
				fmt.Fprintf(out, "  ↑ Updated:  %s %s\n", day.Date, day.Reason)
				result.Updated++
			default:
				fmt.Fprintf(out, "  ✓ Imported: %s %s\n", day.Date, day.Reason)
				result.Imported++
			}
			if !opts.DryRun {
				list, _ = holiday.UpsertDayOff(list, day)
			}
		}
	}
	return list, result
}
