package attendance

import (
	"fmt"
	"math"

	"github.com/Tiliavir/attendance-time-calculator/internal/model"
	"github.com/Tiliavir/attendance-time-calculator/internal/timecalc"
)

// MaxAppliedOvertime is the largest overtime a user may declare for one day.
const MaxAppliedOvertime = 8.0

// realizedTolerance absorbs float drift when comparing against the rounded cap.
const realizedTolerance = 0.01

// ActualOvertime is the system-computed excess of effective hours over the standard.
func ActualOvertime(effectiveHours, standard float64) float64 {
	return math.Max(0, timecalc.Round2(effectiveHours-standard))
}

// ValidateAppliedOvertime accepts candidate only if it lies in
// [0, MaxAppliedOvertime], is a multiple of half an hour and does not exceed
// the overtime the record actually produced beyond the standard day.
// The realized check needs both times on the record and is skipped otherwise.
func ValidateAppliedOvertime(candidate float64, rec model.Record, cfg Config) error {
	if math.IsNaN(candidate) || candidate < 0 {
		return &ValidationError{
			Clause:  ClauseNegative,
			Field:   "applied_overtime",
			Message: "applied overtime cannot be negative",
		}
	}
	if candidate > MaxAppliedOvertime {
		return &ValidationError{
			Clause:  ClauseMaxCap,
			Field:   "applied_overtime",
			Message: fmt.Sprintf("applied overtime cannot exceed %gh", MaxAppliedOvertime),
			Limit:   MaxAppliedOvertime,
		}
	}
	if doubled := candidate * 2; math.Abs(doubled-math.Round(doubled)) > 1e-9 {
		return &ValidationError{
			Clause:  ClauseHalfHour,
			Field:   "applied_overtime",
			Message: "applied overtime must be a multiple of 0.5h",
		}
	}
	if rec.CheckInTime == "" || !rec.HasCheckOut() {
		return nil
	}

	raw, err := RawWorkedHours(rec.CheckInTime, *rec.CheckOutTime, cfg)
	if err != nil {
		return err
	}
	limit := math.Max(0, timecalc.Round1(raw-cfg.StandardWorkHours))
	if candidate > limit+realizedTolerance {
		return &ValidationError{
			Clause:  ClauseExceedsRealized,
			Field:   "applied_overtime",
			Message: fmt.Sprintf("applied overtime cannot exceed the %.1fh worked beyond the standard day", limit),
			Limit:   limit,
		}
	}
	return nil
}
