package attendance

import (
	"fmt"

	"github.com/Tiliavir/attendance-time-calculator/internal/timecalc"
)

// DailyHours returns the effective hours of one day.
//
// Arrival before FlexibleStartEarly earns no credit, any overlap with the
// lunch interval is subtracted and appliedOvertime hours are removed from
// the span. The caller guarantees checkOut is after checkIn.
func DailyHours(checkIn, checkOut string, appliedOvertime float64, cfg Config) (float64, error) {
	minutes, err := workedMinutes(checkIn, checkOut, cfg)
	if err != nil {
		return 0, err
	}
	minutes -= appliedOvertime * 60
	return timecalc.Round2(minutes / 60), nil
}

// RawWorkedHours is the lunch-adjusted span of a day before any applied
// overtime is subtracted. It is not rounded.
func RawWorkedHours(checkIn, checkOut string, cfg Config) (float64, error) {
	minutes, err := workedMinutes(checkIn, checkOut, cfg)
	if err != nil {
		return 0, err
	}
	return minutes / 60, nil
}

func workedMinutes(checkIn, checkOut string, cfg Config) (float64, error) {
	in, err := timecalc.TimeToMinutes(checkIn)
	if err != nil {
		return 0, fmt.Errorf("check-in: %w", err)
	}
	out, err := timecalc.TimeToMinutes(checkOut)
	if err != nil {
		return 0, fmt.Errorf("check-out: %w", err)
	}
	earliest, err := timecalc.TimeToMinutes(cfg.FlexibleStartEarly)
	if err != nil {
		return 0, fmt.Errorf("flexible start: %w", err)
	}
	lunchStart, lunchEnd, err := cfg.lunchMinutes()
	if err != nil {
		return 0, err
	}

	start := max(in, earliest)
	minutes := out - start

	// The overlap is measured against the real check-in, not the floored start.
	if in < lunchEnd && out > lunchStart {
		overlap := min(out, lunchEnd) - max(in, lunchStart)
		minutes -= max(overlap, 0)
	}
	return float64(minutes), nil
}

// ValidateTimes checks both clock strings and that check-out is strictly
// after check-in.
func ValidateTimes(checkIn, checkOut string) error {
	in, err := timecalc.TimeToMinutes(checkIn)
	if err != nil {
		return err
	}
	out, err := timecalc.TimeToMinutes(checkOut)
	if err != nil {
		return err
	}
	if out <= in {
		return &ValidationError{
			Clause:  ClauseCheckOutBeforeCheckIn,
			Field:   "check_out_time",
			Message: fmt.Sprintf("check-out %s must be after check-in %s", checkOut, checkIn),
		}
	}
	return nil
}
