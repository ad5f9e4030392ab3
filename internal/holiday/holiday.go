// Package holiday provides public holidays and personal days off, which the
// tracker uses to decide which dates of the active range count as work days.
package holiday

import (
	"fmt"
	"sort"
	"strings"
)

// Holiday is a public non-working day.
type Holiday struct {
	Date string `json:"date" yaml:"date"` // YYYY-MM-DD
	Name string `json:"name" yaml:"name"`
}

// Day-off sources.
const (
	SourceManual  = "manual"
	SourceOutlook = "outlook"
)

// DayOff is a personal non-working day such as vacation.
type DayOff struct {
	Date       string `json:"date" yaml:"date"`
	Reason     string `json:"reason" yaml:"reason"`
	Source     string `json:"source" yaml:"source"`
	ExternalID string `json:"external_id,omitempty" yaml:"external_id,omitempty"`
}

// Calendar answers whether a date is a non-working day.
type Calendar struct {
	off map[string]string
}

// NewCalendar merges holidays and days off. A day off shadows a holiday on the same date.
func NewCalendar(holidays []Holiday, daysOff []DayOff) Calendar {
	off := make(map[string]string, len(holidays)+len(daysOff))
	for _, h := range holidays {
		off[h.Date] = h.Name
	}
	for _, d := range daysOff {
		off[d.Date] = d.Reason
	}
	return Calendar{off: off}
}

// IsOff reports whether date is a holiday or day off.
func (c Calendar) IsOff(date string) bool {
	_, ok := c.off[date]
	return ok
}

// Reason returns the holiday name or day-off reason for date.
func (c Calendar) Reason(date string) (string, bool) {
	r, ok := c.off[date]
	return r, ok
}

// WorkDays counts the dates that are not off.
func (c Calendar) WorkDays(dates []string) int {
	n := 0
	for _, d := range dates {
		if !c.IsOff(d) {
			n++
		}
	}
	return n
}

// UpsertDayOff inserts d or replaces the entry with the same date. It
// reports whether the list changed.
func UpsertDayOff(list []DayOff, d DayOff) ([]DayOff, bool) {
	for i := range list {
		if list[i].Date == d.Date {
			if list[i] == d {
				return list, false
			}
			list[i] = d
			return list, true
		}
	}
	list = append(list, d)
	sort.Slice(list, func(i, j int) bool { return list[i].Date < list[j].Date })
	return list, true
}

// RemoveDayOff drops the entry for date. It reports whether one existed.
func RemoveDayOff(list []DayOff, date string) ([]DayOff, bool) {
	for i := range list {
		if list[i].Date == date {
			return append(list[:i], list[i+1:]...), true
		}
	}
	return list, false
}

// staticHolidays is the built-in 2026 list used when the API is unavailable.
var staticHolidays = map[int][]staticEntry{
	2026: {
		{"New Year's Day", []string{"01-01", "01-02", "01-03"}},
		{"Spring Festival", []string{"02-15", "02-16", "02-17", "02-18", "02-19", "02-20", "02-21", "02-22", "02-23"}},
		{"Qingming Festival", []string{"04-04", "04-05", "04-06"}},
		{"Labour Day", []string{"05-01", "05-02", "05-03", "05-04", "05-05"}},
		{"Dragon Boat Festival", []string{"05-31", "06-01", "06-02"}},
		{"Mid-Autumn Festival", []string{"09-25", "09-26", "09-27"}},
		{"National Day", []string{"10-01", "10-02", "10-03", "10-04", "10-05", "10-06", "10-07", "10-08"}},
	},
}

type staticEntry struct {
	name  string
	dates []string
}

// StaticHolidays returns the built-in list for year, or nil if there is none.
func StaticHolidays(year int) []Holiday {
	entries, ok := staticHolidays[year]
	if !ok {
		return nil
	}
	var out []Holiday
	for _, e := range entries {
		for _, md := range e.dates {
			out = append(out, Holiday{Date: fmt.Sprintf("%d-%s", year, md), Name: e.name})
		}
	}
	return out
}

// normalizeDate turns "MM-DD" or "YYYY-MM-DD" into "YYYY-MM-DD".
func normalizeDate(year int, s string) string {
	s = strings.TrimSpace(s)
	if len(s) == len("01-02") {
		return fmt.Sprintf("%d-%s", year, s)
	}
	return s
}
