package attendance

import (
	"errors"
	"fmt"
)

// Clause names the rule a rejected input violated.
type Clause string

const (
	ClauseNegative              Clause = "negative"
	ClauseMaxCap                Clause = "max_cap"
	ClauseHalfHour              Clause = "half_hour"
	ClauseExceedsRealized       Clause = "exceeds_realized"
	ClauseCheckOutBeforeCheckIn Clause = "checkout_before_checkin"
	ClauseEarlyCheckOut         Clause = "early_checkout"
	ClauseRangeTooLong          Clause = "range_too_long"
	ClauseInvalidRange          Clause = "invalid_range"
	ClauseConfig                Clause = "config"
)

// ValidationError is a semantic rule violation. Limit carries the bound
// that was exceeded where one applies (e.g. the realized overtime).
type ValidationError struct {
	Clause  Clause
	Field   string
	Message string
	Limit   float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Clause, e.Message)
}

// IsClause reports whether err is a ValidationError for the given clause.
func IsClause(err error, clause Clause) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Clause == clause
}
