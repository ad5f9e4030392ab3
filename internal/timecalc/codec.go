package timecalc

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

var (
	clockPattern    = regexp.MustCompile(`^(\d+):(\d+)$`)
	completePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// FormatError reports a clock string that is not of the form HH:mm.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid time %q: expected HH:mm", e.Input)
}

// TimeToMinutes parses "HH:mm" into minutes since midnight.
// Only the shape is checked; "25:70" parses to 1570.
func TimeToMinutes(s string) (int, error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, &FormatError{Input: s}
	}
	h, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, &FormatError{Input: s}
	}
	min, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, &FormatError{Input: s}
	}
	return h*60 + min, nil
}

// MinutesToTime formats minutes since midnight as zero-padded "HH:mm".
// The hour is floored and the minute rounded, so float drift such as
// 1049.9999 still renders as "17:30".
func MinutesToTime(minutes float64) string {
	hours := math.Floor(minutes / 60)
	mins := jsRound(math.Mod(minutes, 60))
	return fmt.Sprintf("%02d:%02d", int(hours), int(mins))
}

// HoursToTime formats a fractional hour of day, e.g. 8.5 -> "08:30".
func HoursToTime(hours float64) string {
	return MinutesToTime(hours * 60)
}

// IsCompleteTime reports whether s is exactly two digits, a colon and two digits.
// Partially typed values such as "8:3" are not complete.
func IsCompleteTime(s string) bool {
	return completePattern.MatchString(s)
}

// Round2 rounds half up to two decimals.
func Round2(v float64) float64 {
	return jsRound(v*100) / 100
}

// Round1 rounds half up to one decimal.
func Round1(v float64) float64 {
	return jsRound(v*10) / 10
}

// jsRound rounds half towards positive infinity; -2.5 becomes -2.
func jsRound(v float64) float64 {
	return math.Floor(v + 0.5)
}
