package timecalc

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"time"
)

// DateLayout is the calendar date format used for record keys.
const DateLayout = "2006-01-02"

// GenerateID creates a unique record ID based on the record date and a random suffix.
func GenerateID(date string) string {
	const chars = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffix := make([]byte, 5)
	for i := range suffix {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		suffix[i] = chars[n.Int64()]
	}
	return fmt.Sprintf("%s-%s", date, string(suffix))
}

// FormatHours formats decimal hours as "8h" or "7h 56m".
// Negative values keep their sign: -0.5 is "-0h 30m".
func FormatHours(hours float64) string {
	sign := ""
	if hours < 0 {
		sign = "-"
		hours = -hours
	}
	whole := math.Floor(hours)
	minutes := jsRound((hours - whole) * 60)
	if minutes == 60 {
		whole++
		minutes = 0
	}
	if minutes == 0 {
		return fmt.Sprintf("%s%dh", sign, int(whole))
	}
	return fmt.Sprintf("%s%dh %dm", sign, int(whole), int(minutes))
}

// WeekRange returns the Monday and Sunday of the ISO week containing t, both at 00:00.
func WeekRange(t time.Time) (time.Time, time.Time) {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	monday := StartOfDay(t.AddDate(0, 0, -(wd - 1)))
	return monday, monday.AddDate(0, 0, 6)
}

// WorkWeek returns Monday and Friday of the ISO week containing t.
func WorkWeek(t time.Time) (time.Time, time.Time) {
	monday, _ := WeekRange(t)
	return monday, monday.AddDate(0, 0, 4)
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ParseDate parses a YYYY-MM-DD string in the local time zone.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// DaysBetween returns the inclusive number of calendar days in [from, to].
// It is zero or negative when to is before from.
func DaysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 12, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 12, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours()/24) + 1
}

// DayRange lists every date in [from, to] as YYYY-MM-DD.
func DayRange(from, to time.Time) []string {
	var days []string
	for d := StartOfDay(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DateLayout))
	}
	return days
}

// ClockString formats the wall-clock time of t as "HH:mm".
func ClockString(t time.Time) string {
	return t.Format("15:04")
}
