package attendance

import (
	"fmt"

	"github.com/Tiliavir/attendance-time-calculator/internal/model"
	"github.com/Tiliavir/attendance-time-calculator/internal/timecalc"
)

// Day length bounds outside which a completed day is flagged.
const (
	ShortDayHours = 4.0
	LongDayHours  = 12.0
)

// Warning flags a completed day that is plausible but unusual.
type Warning string

const (
	WarnShortDay Warning = "short_day"
	WarnLongDay  Warning = "long_day"
)

// UpdateRecordHours returns a copy of rec with EffectiveHours and Overtime
// re-derived. Both are cleared unless check-in and check-out are present.
func UpdateRecordHours(rec model.Record, cfg Config) (model.Record, error) {
	out := rec.Clone()
	if out.CheckInTime == "" || !out.HasCheckOut() {
		out.EffectiveHours = nil
		out.Overtime = nil
		return out, nil
	}

	effective, err := DailyHours(out.CheckInTime, *out.CheckOutTime, out.AppliedOvertimeHours(), cfg)
	if err != nil {
		return model.Record{}, fmt.Errorf("record %s: %w", rec.Date, err)
	}
	overtime := ActualOvertime(effective, cfg.StandardWorkHours)

	effective = timecalc.Round2(effective)
	overtime = timecalc.Round2(overtime)
	out.EffectiveHours = &effective
	out.Overtime = &overtime
	return out, nil
}

// Warnings lists the day-length flags of a completed record.
func Warnings(rec model.Record) []Warning {
	if rec.EffectiveHours == nil {
		return nil
	}
	var w []Warning
	if *rec.EffectiveHours < ShortDayHours {
		w = append(w, WarnShortDay)
	}
	if *rec.EffectiveHours > LongDayHours {
		w = append(w, WarnLongDay)
	}
	return w
}
