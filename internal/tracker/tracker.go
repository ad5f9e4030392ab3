// Package tracker is the single owner of the active record set. Every
// mutation is validated, followed by a full recompute and an idempotent
// save; a rejected mutation leaves the set and the store untouched.
package tracker

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/attendance-time-calculator/internal/attendance"
	"github.com/Tiliavir/attendance-time-calculator/internal/config"
	"github.com/Tiliavir/attendance-time-calculator/internal/holiday"
	"github.com/Tiliavir/attendance-time-calculator/internal/model"
	"github.com/Tiliavir/attendance-time-calculator/internal/storage"
	"github.com/Tiliavir/attendance-time-calculator/internal/timecalc"
)

// ErrNoRange is returned by operations that need an active range.
var ErrNoRange = errors.New("no active range")

// NotInRangeError reports a date outside the active range.
type NotInRangeError struct {
	Date       string
	Start, End string
}

func (e *NotInRangeError) Error() string {
	return fmt.Sprintf("%s is not in the active range %s to %s", e.Date, e.Start, e.End)
}

// CalendarSource supplies the non-working days of the given years.
type CalendarSource interface {
	Calendar(years ...int) (holiday.Calendar, error)
}

// Options configures a Tracker.
type Options struct {
	Rules    attendance.Config
	Policy   config.PolicyConfig
	Calendar CalendarSource
	Now      func() time.Time
	Logger   zerolog.Logger
}

// Tracker holds the active range and its records.
type Tracker struct {
	store    storage.Store
	rules    attendance.Config
	policy   config.PolicyConfig
	calendar CalendarSource
	now      func() time.Time
	logger   zerolog.Logger

	active *model.ActiveRange
	set    model.RecordSet
}

// New returns a Tracker over store. Call Load to restore the active range.
func New(store storage.Store, opts Options) *Tracker {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		store:    store,
		rules:    opts.Rules,
		policy:   opts.Policy,
		calendar: opts.Calendar,
		now:      now,
		logger:   opts.Logger.With().Str("component", "tracker").Logger(),
	}
}

// Today is the current date as YYYY-MM-DD.
func (t *Tracker) Today() string {
	return t.now().Format(timecalc.DateLayout)
}

// Load restores the persisted active range and re-derives its records with
// the current rules.
func (t *Tracker) Load() error {
	r, err := t.store.LoadActiveRange()
	if err != nil {
		return err
	}
	if r == nil {
		t.active, t.set = nil, model.RecordSet{}
		return nil
	}
	set, err := t.buildSet(r.Start, r.End)
	if err != nil {
		return err
	}
	t.active, t.set = r, set
	t.logger.Debug().Str("start", r.Start).Str("end", r.End).Int("days", len(set.Records)).Msg("range loaded")
	return nil
}

// buildSet creates one record per date and merges stored records into it.
func (t *Tracker) buildSet(start, end string) (model.RecordSet, error) {
	from, err := timecalc.ParseDate(start)
	if err != nil {
		return model.RecordSet{}, err
	}
	to, err := timecalc.ParseDate(end)
	if err != nil {
		return model.RecordSet{}, err
	}
	stored, err := t.store.LoadRange(start, end)
	if err != nil {
		return model.RecordSet{}, err
	}
	byDate := make(map[string]model.Record, len(stored))
	for _, r := range stored {
		byDate[r.Date] = r
	}

	var set model.RecordSet
	for _, date := range timecalc.DayRange(from, to) {
		rec, ok := byDate[date]
		if !ok {
			rec = model.NewRecord(timecalc.GenerateID(date), date)
		}
		if rec.AppliedOvertime != nil {
			if err := attendance.ValidateAppliedOvertime(*rec.AppliedOvertime, rec, t.rules); err != nil {
				t.logger.Warn().Err(err).Str("date", date).Float64("applied_overtime", *rec.AppliedOvertime).
					Msg("dropping invalid stored applied overtime")
				rec.AppliedOvertime = nil
			}
		}
		derived, err := attendance.UpdateRecordHours(rec, t.rules)
		if err != nil {
			t.logger.Warn().Err(err).Str("date", date).Msg("stored record has invalid times")
			derived = model.NewRecord(rec.ID, date)
		}
		set.Records = append(set.Records, derived)
	}
	return set, set.Validate()
}

// NewRange replaces the active range with [start, end]. An empty end means
// a single day. Stored records for those dates are merged in.
func (t *Tracker) NewRange(start, end string) error {
	if end == "" {
		end = start
	}
	from, err := timecalc.ParseDate(start)
	if err != nil {
		return &attendance.ValidationError{Clause: attendance.ClauseInvalidRange, Field: "start", Message: err.Error()}
	}
	to, err := timecalc.ParseDate(end)
	if err != nil {
		return &attendance.ValidationError{Clause: attendance.ClauseInvalidRange, Field: "end", Message: err.Error()}
	}
	days := timecalc.DaysBetween(from, to)
	if days < 1 {
		return &attendance.ValidationError{
			Clause:  attendance.ClauseInvalidRange,
			Field:   "end",
			Message: fmt.Sprintf("end %s is before start %s", end, start),
		}
	}
	if days > model.MaxRangeDays {
		return &attendance.ValidationError{
			Clause:  attendance.ClauseRangeTooLong,
			Field:   "end",
			Message: fmt.Sprintf("%d days selected, at most %d allowed", days, model.MaxRangeDays),
			Limit:   model.MaxRangeDays,
		}
	}

	set, err := t.buildSet(start, end)
	if err != nil {
		return err
	}
	r := model.ActiveRange{Start: start, End: end}
	if err := t.store.SaveActiveRange(r); err != nil {
		return err
	}
	t.active, t.set = &r, set
	t.logger.Info().Str("start", start).Str("end", end).Int("days", days).Msg("range created")
	return nil
}

// Range returns the active range, or nil.
func (t *Tracker) Range() *model.ActiveRange {
	if t.active == nil {
		return nil
	}
	r := *t.active
	return &r
}

// Records returns a copy of every record in the active range.
func (t *Tracker) Records() []model.Record {
	out := make([]model.Record, len(t.set.Records))
	for i, r := range t.set.Records {
		out[i] = r.Clone()
	}
	return out
}

// View returns the records inside the filter, or all records without one.
func (t *Tracker) View() []model.Record {
	if t.active == nil {
		return nil
	}
	view := t.set.Filter(t.active.FilterStart, t.active.FilterEnd)
	out := make([]model.Record, len(view))
	for i, r := range view {
		out[i] = r.Clone()
	}
	return out
}

// SetFilter restricts aggregation to [from, to], which must lie in the active range.
func (t *Tracker) SetFilter(from, to string) error {
	if t.active == nil {
		return ErrNoRange
	}
	for _, d := range []string{from, to} {
		if _, err := timecalc.ParseDate(d); err != nil {
			return &attendance.ValidationError{Clause: attendance.ClauseInvalidRange, Field: "filter", Message: err.Error()}
		}
	}
	if to < from {
		return &attendance.ValidationError{
			Clause:  attendance.ClauseInvalidRange,
			Field:   "filter",
			Message: fmt.Sprintf("filter end %s is before start %s", to, from),
		}
	}
	if from < t.active.Start || to > t.active.End {
		return &attendance.ValidationError{
			Clause:  attendance.ClauseInvalidRange,
			Field:   "filter",
			Message: fmt.Sprintf("filter %s to %s is outside the range %s to %s", from, to, t.active.Start, t.active.End),
		}
	}
	return t.saveRange(from, to)
}

// ClearFilter removes the filter.
func (t *Tracker) ClearFilter() error {
	if t.active == nil {
		return ErrNoRange
	}
	return t.saveRange("", "")
}

func (t *Tracker) saveRange(from, to string) error {
	r := *t.active
	r.FilterStart, r.FilterEnd = from, to
	if err := t.store.SaveActiveRange(r); err != nil {
		return err
	}
	t.active = &r
	return nil
}

// Calendar returns the non-working days for the active range. It is empty
// without a calendar source.
func (t *Tracker) Calendar() (holiday.Calendar, error) {
	if t.calendar == nil || t.active == nil {
		return holiday.NewCalendar(nil, nil), nil
	}
	years := []int{}
	for _, d := range []string{t.active.Start, t.active.End} {
		if p, err := time.Parse(timecalc.DateLayout, d); err == nil {
			years = append(years, p.Year())
		}
	}
	return t.calendar.Calendar(years...)
}

// DayCount is the number of standard days required for the view. With
// exclude_holidays set, holidays and days off are not counted.
func (t *Tracker) DayCount() (int, error) {
	return t.dayCount(t.View())
}

func (t *Tracker) dayCount(view []model.Record) (int, error) {
	if !t.policy.ExcludeHolidays {
		return len(view), nil
	}
	cal, err := t.Calendar()
	if err != nil {
		return 0, fmt.Errorf("loading holidays: %w", err)
	}
	dates := make([]string, len(view))
	for i, r := range view {
		dates[i] = r.Date
	}
	return cal.WorkDays(dates), nil
}

// Result computes the aggregate for the current view.
func (t *Tracker) Result() (attendance.Result, error) {
	if t.active == nil {
		return attendance.Result{}, ErrNoRange
	}
	return t.resultFor(t.set)
}

func (t *Tracker) resultFor(set model.RecordSet) (attendance.Result, error) {
	view := set.Filter(t.active.FilterStart, t.active.FilterEnd)
	n, err := t.dayCount(view)
	if err != nil {
		return attendance.Result{}, err
	}
	res, err := attendance.WeekResult(view, n, t.rules)
	if err != nil {
		return attendance.Result{}, err
	}
	res.FilterStartDate = t.active.FilterStart
	res.FilterEndDate = t.active.FilterEnd
	return res, nil
}

// Cleanup deletes stored days older than retentionDays before today.
func (t *Tracker) Cleanup(retentionDays int) (int, error) {
	if retentionDays < 1 {
		return 0, fmt.Errorf("retention must be at least one day, got %d", retentionDays)
	}
	cutoff := timecalc.StartOfDay(t.now()).AddDate(0, 0, -retentionDays).Format(timecalc.DateLayout)
	n, err := t.store.DeleteBefore(cutoff)
	if err != nil {
		return n, err
	}
	t.logger.Info().Str("before", cutoff).Int("deleted", n).Msg("retention cleanup")
	return n, nil
}
