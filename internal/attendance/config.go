// Package attendance computes effective work hours, overtime, range totals
// and today's earliest leave time from daily check-in/check-out records.
//
// Every function is pure: the rules are passed in explicitly and nothing is
// read from or written to disk, the clock or a logger.
package attendance

import (
	"fmt"
	"math"

	"github.com/Tiliavir/attendance-time-calculator/internal/timecalc"
)

// Config holds the attendance rules shared by all calculations.
// All clock values are same-day "HH:mm" strings.
type Config struct {
	StandardWorkHours  float64 `json:"standard_work_hours" yaml:"standard_work_hours"`
	FlexibleStartEarly string  `json:"flexible_start_early" yaml:"flexible_start_early"`
	FlexibleStartLate  string  `json:"flexible_start_late" yaml:"flexible_start_late"`
	FlexibleEndEarly   string  `json:"flexible_end_early" yaml:"flexible_end_early"`
	FlexibleEndLate    string  `json:"flexible_end_late" yaml:"flexible_end_late"`
	LunchStart         string  `json:"lunch_start" yaml:"lunch_start"`
	LunchEnd           string  `json:"lunch_end" yaml:"lunch_end"`
	// LunchDuration is redundant with LunchEnd-LunchStart, in hours.
	LunchDuration float64 `json:"lunch_duration" yaml:"lunch_duration"`
}

// DefaultConfig returns the built-in rules: 8h days, 08:00-09:30 arrival,
// 18:00-19:30 departure, 12:00-14:00 lunch.
func DefaultConfig() Config {
	return Config{
		StandardWorkHours:  8,
		FlexibleStartEarly: "08:00",
		FlexibleStartLate:  "09:30",
		FlexibleEndEarly:   "18:00",
		FlexibleEndLate:    "19:30",
		LunchStart:         "12:00",
		LunchEnd:           "14:00",
		LunchDuration:      2,
	}
}

// WithDefaults fills zero-valued fields from DefaultConfig. A missing
// LunchDuration is derived from the lunch interval.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.StandardWorkHours == 0 {
		c.StandardWorkHours = def.StandardWorkHours
	}
	fill := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	fill(&c.FlexibleStartEarly, def.FlexibleStartEarly)
	fill(&c.FlexibleStartLate, def.FlexibleStartLate)
	fill(&c.FlexibleEndEarly, def.FlexibleEndEarly)
	fill(&c.FlexibleEndLate, def.FlexibleEndLate)
	fill(&c.LunchStart, def.LunchStart)
	fill(&c.LunchEnd, def.LunchEnd)
	if c.LunchDuration == 0 {
		if start, end, err := c.lunchMinutes(); err == nil && end > start {
			c.LunchDuration = float64(end-start) / 60
		}
	}
	return c
}

// Validate checks the ordering invariants between the configured clock values.
func (c Config) Validate() error {
	if c.StandardWorkHours <= 0 || c.StandardWorkHours > 24 {
		return configError("standard_work_hours", "must be within (0, 24]")
	}
	clocks := []struct {
		field string
		value string
	}{
		{"flexible_start_early", c.FlexibleStartEarly},
		{"flexible_start_late", c.FlexibleStartLate},
		{"flexible_end_early", c.FlexibleEndEarly},
		{"flexible_end_late", c.FlexibleEndLate},
		{"lunch_start", c.LunchStart},
		{"lunch_end", c.LunchEnd},
	}
	mins := make(map[string]int, len(clocks))
	for _, cl := range clocks {
		m, err := timecalc.TimeToMinutes(cl.value)
		if err != nil {
			return configError(cl.field, err.Error())
		}
		if m >= 24*60 {
			return configError(cl.field, "must be a same-day time")
		}
		mins[cl.field] = m
	}
	if mins["flexible_start_early"] >= mins["flexible_start_late"] {
		return configError("flexible_start_late", "must be after flexible_start_early")
	}
	if mins["flexible_end_early"] >= mins["flexible_end_late"] {
		return configError("flexible_end_late", "must be after flexible_end_early")
	}
	if mins["lunch_start"] >= mins["lunch_end"] {
		return configError("lunch_end", "must be after lunch_start")
	}
	derived := float64(mins["lunch_end"]-mins["lunch_start"]) / 60
	if math.Abs(c.LunchDuration-derived) > 0.01 {
		return configError("lunch_duration", fmt.Sprintf("is %.2fh but the lunch interval is %.2fh", c.LunchDuration, derived))
	}
	return nil
}

func (c Config) lunchMinutes() (int, int, error) {
	start, err := timecalc.TimeToMinutes(c.LunchStart)
	if err != nil {
		return 0, 0, fmt.Errorf("lunch start: %w", err)
	}
	end, err := timecalc.TimeToMinutes(c.LunchEnd)
	if err != nil {
		return 0, 0, fmt.Errorf("lunch end: %w", err)
	}
	return start, end, nil
}

func configError(field, msg string) error {
	return &ValidationError{Clause: ClauseConfig, Field: field, Message: fmt.Sprintf("%s %s", field, msg)}
}
