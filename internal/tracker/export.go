package tracker

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/attendance-time-calculator/internal/attendance"
	"github.com/Tiliavir/attendance-time-calculator/internal/model"
	"github.com/Tiliavir/attendance-time-calculator/internal/timecalc"
)

// BundleVersion is the export format version.
const BundleVersion = 1

// ExportBundle is the portable dump of every stored record.
type ExportBundle struct {
	Version    int               `json:"version" yaml:"version"`
	ExportDate time.Time         `json:"export_date" yaml:"export_date"`
	Records    []model.Record    `json:"records" yaml:"records"`
	Config     attendance.Config `json:"config" yaml:"config"`
}

// Export collects every stored record together with the rules in effect.
func (t *Tracker) Export() (ExportBundle, error) {
	records, err := t.store.LoadAll()
	if err != nil {
		return ExportBundle{}, err
	}
	if records == nil {
		records = []model.Record{}
	}
	return ExportBundle{
		Version:    BundleVersion,
		ExportDate: t.now(),
		Records:    records,
		Config:     t.rules,
	}, nil
}

// Import validates every record of b, re-derives it with the current rules
// and saves them all. Nothing is saved if any record is invalid.
func (t *Tracker) Import(b ExportBundle) (int, error) {
	if b.Version != BundleVersion {
		return 0, fmt.Errorf("unsupported export version %d", b.Version)
	}
	seen := make(map[string]bool, len(b.Records))
	derived := make([]model.Record, 0, len(b.Records))
	for _, rec := range b.Records {
		if _, err := time.Parse(timecalc.DateLayout, rec.Date); err != nil {
			return 0, fmt.Errorf("record %q: invalid date: %w", rec.ID, err)
		}
		if seen[rec.Date] {
			return 0, fmt.Errorf("record %s appears twice", rec.Date)
		}
		seen[rec.Date] = true
		if err := validateImported(rec, t.rules); err != nil {
			return 0, fmt.Errorf("record %s: %w", rec.Date, err)
		}
		if rec.ID == "" {
			rec.ID = timecalc.GenerateID(rec.Date)
		}
		d, err := attendance.UpdateRecordHours(rec, t.rules)
		if err != nil {
			return 0, err
		}
		derived = append(derived, d)
	}
	if err := t.store.SaveRecords(derived); err != nil {
		return 0, err
	}
	t.logger.Info().Int("records", len(derived)).Msg("import finished")

	// Refresh the active range with the imported days.
	if t.active != nil {
		if err := t.Load(); err != nil {
			return len(derived), err
		}
	}
	return len(derived), nil
}

// validateImported accepts only the complete "HH:mm" times the tracker writes
// and an applied overtime the day actually produced.
func validateImported(rec model.Record, rules attendance.Config) error {
	if err := validateImportedTimes(rec); err != nil {
		return err
	}
	if rec.AppliedOvertime == nil {
		return nil
	}
	return attendance.ValidateAppliedOvertime(*rec.AppliedOvertime, rec, rules)
}

func validateImportedTimes(rec model.Record) error {
	if rec.CheckInTime == "" {
		if rec.HasCheckOut() {
			return errors.New("check-out without check-in")
		}
		return nil
	}
	if err := storedClock(rec.CheckInTime); err != nil {
		return err
	}
	if !rec.HasCheckOut() {
		return nil
	}
	if err := storedClock(*rec.CheckOutTime); err != nil {
		return err
	}
	return attendance.ValidateTimes(rec.CheckInTime, *rec.CheckOutTime)
}

func storedClock(s string) error {
	if !timecalc.IsCompleteTime(s) {
		return &timecalc.FormatError{Input: s}
	}
	_, err := parseClock(s)
	return err
}

// WriteBundle encodes b as "json" or "yaml".
func WriteBundle(w io.Writer, b ExportBundle, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(b); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported bundle format %q", format)
	}
}

// ReadBundle decodes a "json" or "yaml" bundle.
func ReadBundle(r io.Reader, format string) (ExportBundle, error) {
	var b ExportBundle
	var err error
	switch format {
	case "json":
		err = json.NewDecoder(r).Decode(&b)
	case "yaml":
		err = yaml.NewDecoder(r).Decode(&b)
	default:
		return b, fmt.Errorf("unsupported bundle format %q", format)
	}
	if err != nil {
		return b, fmt.Errorf("decoding %s bundle: %w", format, err)
	}
	return b, nil
}
