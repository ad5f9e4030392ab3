package attendance

import (
	"fmt"
	"time"

	"github.com/Tiliavir/attendance-time-calculator/internal/model"
	"github.com/Tiliavir/attendance-time-calculator/internal/timecalc"
)

// Result is the aggregate over the active record view. It is recomputed
// after every mutation and never persisted as authoritative.
type Result struct {
	WeekID              string   `json:"week_id" yaml:"week_id"`
	WorkDays            int      `json:"work_days" yaml:"work_days"`
	DayCount            int      `json:"day_count" yaml:"day_count"`
	TotalEffectiveHours float64  `json:"total_effective_hours" yaml:"total_effective_hours"`
	RequiredHours       float64  `json:"required_hours" yaml:"required_hours"`
	RemainingHours      float64  `json:"remaining_hours" yaml:"remaining_hours"`
	TodayDate           string   `json:"today_date,omitempty" yaml:"today_date,omitempty"`
	TodayOffTime        *string  `json:"today_off_time,omitempty" yaml:"today_off_time,omitempty"`
	TodayOvertime       *float64 `json:"today_overtime,omitempty" yaml:"today_overtime,omitempty"`
	TodayRequired       *float64 `json:"today_required,omitempty" yaml:"today_required,omitempty"`
	FilterStartDate     string   `json:"filter_start_date,omitempty" yaml:"filter_start_date,omitempty"`
	FilterEndDate       string   `json:"filter_end_date,omitempty" yaml:"filter_end_date,omitempty"`
}

// WeekResult folds records into totals against dayCount standard days.
//
// dayCount is the size of the counted view and may differ from
// len(records). When exactly one record is open (checked in, not checked
// out) today's leave time is projected from the carry-over of the
// completed days.
func WeekResult(records []model.Record, dayCount int, cfg Config) (Result, error) {
	var (
		completed int
		total     float64
		open      []model.Record
	)
	for _, r := range records {
		if r.HasCheckOut() {
			completed++
			if r.EffectiveHours != nil {
				total += *r.EffectiveHours
			}
		}
		if r.IsOpen() {
			open = append(open, r)
		}
	}

	required := float64(dayCount) * cfg.StandardWorkHours
	res := Result{
		WorkDays:            completed,
		DayCount:            dayCount,
		TotalEffectiveHours: timecalc.Round2(total),
		RequiredHours:       required,
		RemainingHours:      timecalc.Round2(required - total),
	}
	if len(records) > 0 {
		d, err := time.Parse(timecalc.DateLayout, records[0].Date)
		if err != nil {
			return Result{}, fmt.Errorf("record date: %w", err)
		}
		res.WeekID = timecalc.ISOWeekLabel(d)
	}

	if len(open) != 1 {
		return res, nil
	}
	today := open[0]
	proj, err := ProjectOffTime(today.CheckInTime, TodayTarget(completed, total, cfg.StandardWorkHours), cfg)
	if err != nil {
		return Result{}, fmt.Errorf("projecting %s: %w", today.Date, err)
	}
	res.TodayDate = today.Date
	res.TodayOffTime = &proj.OffTime
	res.TodayOvertime = &proj.Overtime
	res.TodayRequired = &proj.Required
	return res, nil
}
