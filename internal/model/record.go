package model

import (
	"fmt"
	"time"
)

// MaxRangeDays is the largest number of dates a record set may cover.
const MaxRangeDays = 7

// State is the lifecycle stage of a Record.
type State int

const (
	// Empty records have no check-in yet.
	Empty State = iota
	// OpenCheckedIn records have a check-in but no check-out ("today").
	OpenCheckedIn
	// Completed records have both times and derived hours.
	Completed
)

func (s State) String() string {
	switch s {
	case OpenCheckedIn:
		return "open"
	case Completed:
		return "completed"
	default:
		return "empty"
	}
}

// Record is the attendance of one calendar date.
// EffectiveHours and Overtime are derived from the times, the applied
// overtime and the rules; they are never set independently.
type Record struct {
	ID              string   `json:"id" yaml:"id"`
	Date            string   `json:"date" yaml:"date"`
	CheckInTime     string   `json:"check_in_time" yaml:"check_in_time"`
	CheckOutTime    *string  `json:"check_out_time" yaml:"check_out_time"`
	AppliedOvertime *float64 `json:"applied_overtime" yaml:"applied_overtime"`
	EffectiveHours  *float64 `json:"effective_hours" yaml:"effective_hours"`
	Overtime        *float64 `json:"overtime" yaml:"overtime"`
	Notes           string   `json:"notes" yaml:"notes"`
}

// State reports the lifecycle stage derived from which times are present.
func (r Record) State() State {
	switch {
	case r.CheckInTime == "":
		return Empty
	case !r.HasCheckOut():
		return OpenCheckedIn
	default:
		return Completed
	}
}

// IsOpen reports whether the record has a check-in but no check-out.
func (r Record) IsOpen() bool {
	return r.State() == OpenCheckedIn
}

// HasCheckOut reports whether a check-out time is present.
func (r Record) HasCheckOut() bool {
	return r.CheckOutTime != nil && *r.CheckOutTime != ""
}

// AppliedOvertimeHours returns the applied overtime, or 0 when unset.
func (r Record) AppliedOvertimeHours() float64 {
	if r.AppliedOvertime == nil {
		return 0
	}
	return *r.AppliedOvertime
}

// Clone returns a deep copy so callers can mutate pointers freely.
func (r Record) Clone() Record {
	c := r
	if r.CheckOutTime != nil {
		v := *r.CheckOutTime
		c.CheckOutTime = &v
	}
	c.AppliedOvertime = cloneFloat(r.AppliedOvertime)
	c.EffectiveHours = cloneFloat(r.EffectiveHours)
	c.Overtime = cloneFloat(r.Overtime)
	return c
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// NewRecord returns an empty record for the given date.
func NewRecord(id, date string) Record {
	return Record{ID: id, Date: date}
}

// RecordSet is the active contiguous date range, ordered by date ascending.
type RecordSet struct {
	Records []Record `json:"records" yaml:"records"`
}

// Validate checks ordering, uniqueness and size.
func (s RecordSet) Validate() error {
	if len(s.Records) > MaxRangeDays {
		return fmt.Errorf("record set has %d days, at most %d allowed", len(s.Records), MaxRangeDays)
	}
	for i := 1; i < len(s.Records); i++ {
		if s.Records[i].Date <= s.Records[i-1].Date {
			return fmt.Errorf("record set not strictly ascending at %s", s.Records[i].Date)
		}
	}
	return nil
}

// RequiredHours is the day count multiplied by the standard daily hours.
func (s RecordSet) RequiredHours(standard float64) float64 {
	return float64(len(s.Records)) * standard
}

// Index returns the position of the record for date, or -1.
func (s RecordSet) Index(date string) int {
	for i := range s.Records {
		if s.Records[i].Date == date {
			return i
		}
	}
	return -1
}

// Filter returns the records whose date lies in [from, to]. Empty bounds
// disable filtering.
func (s RecordSet) Filter(from, to string) []Record {
	if from == "" || to == "" {
		return s.Records
	}
	var out []Record
	for _, r := range s.Records {
		if r.Date >= from && r.Date <= to {
			out = append(out, r)
		}
	}
	return out
}

// ActiveRange is the persisted selection of the record set and its view filter.
type ActiveRange struct {
	Start       string    `json:"start" yaml:"start"`
	End         string    `json:"end" yaml:"end"`
	FilterStart string    `json:"filter_start,omitempty" yaml:"filter_start,omitempty"`
	FilterEnd   string    `json:"filter_end,omitempty" yaml:"filter_end,omitempty"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

// DayFile is the top-level structure stored for each calendar date.
type DayFile struct {
	Date      string    `json:"date"`
	Record    *Record   `json:"record"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
