package tracker

import (
	"fmt"
	"math"

	"github.com/Tiliavir/attendance-time-calculator/internal/attendance"
	"github.com/Tiliavir/attendance-time-calculator/internal/model"
	"github.com/Tiliavir/attendance-time-calculator/internal/timecalc"
)

// Field names a clearable part of a record.
type Field string

const (
	FieldCheckIn  Field = "in"
	FieldCheckOut Field = "out"
	FieldOvertime Field = "overtime"
	FieldNotes    Field = "note"
)

// Outcome is the state after an accepted mutation.
type Outcome struct {
	Record   model.Record
	Result   attendance.Result
	Warnings []attendance.Warning
	// ClampedFrom holds the entered check-in when it was moved to the
	// earliest recognized start.
	ClampedFrom string
}

// parseClock accepts same-day "HH:mm" values only.
func parseClock(s string) (int, error) {
	m, err := timecalc.TimeToMinutes(s)
	if err != nil {
		return 0, err
	}
	if m >= 24*60 {
		return 0, &timecalc.FormatError{Input: s}
	}
	return m, nil
}

// mutate applies fn to a copy of the record for date. The copy is
// re-derived, the result recomputed and the record saved before the set
// is updated. Any error leaves the tracker and the store unchanged.
func (t *Tracker) mutate(date string, fn func(rec *model.Record) error) (Outcome, error) {
	if t.active == nil {
		return Outcome{}, ErrNoRange
	}
	idx := t.set.Index(date)
	if idx < 0 {
		return Outcome{}, &NotInRangeError{Date: date, Start: t.active.Start, End: t.active.End}
	}

	rec := t.set.Records[idx].Clone()
	if err := fn(&rec); err != nil {
		return Outcome{}, err
	}
	rec, err := attendance.UpdateRecordHours(rec, t.rules)
	if err != nil {
		return Outcome{}, err
	}

	next := model.RecordSet{Records: t.Records()}
	next.Records[idx] = rec
	res, err := t.resultFor(next)
	if err != nil {
		return Outcome{}, err
	}
	if err := t.store.SaveRecords([]model.Record{rec}); err != nil {
		return Outcome{}, fmt.Errorf("saving %s: %w", date, err)
	}

	t.set = next
	t.logger.Debug().Str("date", date).Str("state", rec.State().String()).Msg("record updated")
	return Outcome{Record: rec.Clone(), Result: res, Warnings: attendance.Warnings(rec)}, nil
}

// CheckIn sets the check-in time of date. With clamp_early_check_in an
// arrival before flexible_start_early is recorded as flexible_start_early.
func (t *Tracker) CheckIn(date, clock string) (Outcome, error) {
	in, err := parseClock(clock)
	if err != nil {
		return Outcome{}, err
	}
	earliest, err := timecalc.TimeToMinutes(t.rules.FlexibleStartEarly)
	if err != nil {
		return Outcome{}, err
	}
	entered := clock
	clamped := t.policy.ClampEarlyCheckIn && in < earliest
	if clamped {
		clock = t.rules.FlexibleStartEarly
	} else {
		clock = timecalc.MinutesToTime(float64(in))
	}

	out, err := t.mutate(date, func(rec *model.Record) error {
		rec.CheckInTime = clock
		if rec.HasCheckOut() {
			if err := attendance.ValidateTimes(clock, *rec.CheckOutTime); err != nil {
				return err
			}
		}
		return t.revalidateOvertime(*rec)
	})
	if err != nil {
		return Outcome{}, err
	}
	if clamped {
		out.ClampedFrom = entered
	}
	return out, nil
}

// CheckOut sets the check-out time of date, which must already have a check-in.
func (t *Tracker) CheckOut(date, clock string) (Outcome, error) {
	outMin, err := parseClock(clock)
	if err != nil {
		return Outcome{}, err
	}
	clock = timecalc.MinutesToTime(float64(outMin))

	return t.mutate(date, func(rec *model.Record) error {
		if rec.CheckInTime == "" {
			return &attendance.ValidationError{
				Clause:  attendance.ClauseCheckOutBeforeCheckIn,
				Field:   "check_out_time",
				Message: "check in before checking out",
			}
		}
		if err := attendance.ValidateTimes(rec.CheckInTime, clock); err != nil {
			return err
		}
		if err := t.checkFlexibleEnd(*rec, outMin); err != nil {
			return err
		}
		rec.CheckOutTime = &clock
		return t.revalidateOvertime(*rec)
	})
}

// checkFlexibleEnd rejects leaving before flexible_end_early while the day
// still owes a full standard day after carry-over from the other completed days.
func (t *Tracker) checkFlexibleEnd(rec model.Record, outMin int) error {
	if !t.policy.EnforceFlexibleEnd {
		return nil
	}
	endFloor, err := timecalc.TimeToMinutes(t.rules.FlexibleEndEarly)
	if err != nil {
		return err
	}
	if outMin >= endFloor {
		return nil
	}

	var completed int
	var total float64
	for _, r := range t.set.Filter(t.active.FilterStart, t.active.FilterEnd) {
		if r.Date == rec.Date || !r.HasCheckOut() {
			continue
		}
		completed++
		if r.EffectiveHours != nil {
			total += *r.EffectiveHours
		}
	}
	std := t.rules.StandardWorkHours
	required := math.Max(math.Min(attendance.TodayTarget(completed, total, std), std), 0)
	if required < std {
		return nil
	}
	return &attendance.ValidationError{
		Clause:  attendance.ClauseEarlyCheckOut,
		Field:   "check_out_time",
		Message: fmt.Sprintf("check-out before %s while %.2fh are still owed", t.rules.FlexibleEndEarly, required),
	}
}

// revalidateOvertime keeps an existing applied overtime within what the new times realize.
func (t *Tracker) revalidateOvertime(rec model.Record) error {
	if rec.AppliedOvertime == nil {
		return nil
	}
	return attendance.ValidateAppliedOvertime(*rec.AppliedOvertime, rec, t.rules)
}

// ApplyOvertime declares hours of applied overtime for date.
func (t *Tracker) ApplyOvertime(date string, hours float64) (Outcome, error) {
	return t.mutate(date, func(rec *model.Record) error {
		if err := attendance.ValidateAppliedOvertime(hours, *rec, t.rules); err != nil {
			return err
		}
		rec.AppliedOvertime = &hours
		return nil
	})
}

// SetNote replaces the free-text note of date.
func (t *Tracker) SetNote(date, note string) (Outcome, error) {
	return t.mutate(date, func(rec *model.Record) error {
		rec.Notes = note
		return nil
	})
}

// Clear removes field from date. Clearing the check-in reverts the record
// to empty; clearing the check-out reopens it.
func (t *Tracker) Clear(date string, field Field) (Outcome, error) {
	return t.mutate(date, func(rec *model.Record) error {
		switch field {
		case FieldCheckIn:
			rec.CheckInTime = ""
			rec.CheckOutTime = nil
			rec.AppliedOvertime = nil
		case FieldCheckOut:
			rec.CheckOutTime = nil
		case FieldOvertime:
			rec.AppliedOvertime = nil
		case FieldNotes:
			rec.Notes = ""
		default:
			return fmt.Errorf("unknown field %q", field)
		}
		return nil
	})
}
