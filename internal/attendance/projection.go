package attendance

import (
	"fmt"
	"math"

	"github.com/Tiliavir/attendance-time-calculator/internal/timecalc"
)

// overtimeNoise is the projected overtime at or below which nothing is reported.
const overtimeNoise = 0.1

// Projection is the earliest allowed leave time for the open day.
type Projection struct {
	OffTime  string  `json:"off_time" yaml:"off_time"`
	Overtime float64 `json:"overtime" yaml:"overtime"`
	// Required is today's obligation after carry-over, clamped to [0, standard].
	Required float64 `json:"required" yaml:"required"`
}

// TodayTarget is the standard day adjusted by the surplus or deficit of the
// completed days: completed*standard - total + standard.
func TodayTarget(completedDays int, totalEffectiveHours, standard float64) float64 {
	return float64(completedDays)*standard - totalEffectiveHours + standard
}

// ProjectOffTime computes when the user may leave today.
//
// The lunch break is added to the forward projection when the working span
// crosses it. FlexibleEndEarly only acts as a floor while a full standard
// day is still owed, so a prior surplus can permit leaving earlier.
func ProjectOffTime(checkIn string, todayTarget float64, cfg Config) (Projection, error) {
	required := math.Max(math.Min(todayTarget, cfg.StandardWorkHours), 0)
	requiredMinutes := int(math.Round(required * 60))

	in, err := timecalc.TimeToMinutes(checkIn)
	if err != nil {
		return Projection{}, fmt.Errorf("check-in: %w", err)
	}
	lunchStart, lunchEnd, err := cfg.lunchMinutes()
	if err != nil {
		return Projection{}, err
	}
	endFloor, err := timecalc.TimeToMinutes(cfg.FlexibleEndEarly)
	if err != nil {
		return Projection{}, fmt.Errorf("flexible end: %w", err)
	}

	rawOff := in + requiredMinutes
	if in < lunchEnd && rawOff > lunchStart {
		rawOff += lunchEnd - lunchStart
	}

	actualOff := rawOff
	if required >= cfg.StandardWorkHours {
		actualOff = max(rawOff, endFloor)
	}

	overtime := math.Max(0, timecalc.Round2(float64(actualOff-rawOff)/60))
	if overtime <= overtimeNoise {
		overtime = 0
	}
	return Projection{
		OffTime:  timecalc.MinutesToTime(float64(actualOff)),
		Overtime: overtime,
		Required: required,
	}, nil
}
