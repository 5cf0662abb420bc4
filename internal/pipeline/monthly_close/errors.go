package monthly_close

import "errors"

var (
	// ErrInvalidPeriod is returned when the period is not a YYYY-MM string
	// with a month between 1 and 12.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrSchemaMismatch is returned when a source lacks a required column
	// after header cleanup.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrDegenerateAggregate is returned under DegenerateFail when the
	// trailing cost of every row sums to zero.
	ErrDegenerateAggregate = errors.New("degenerate aggregate: total 12-month cost is zero")
)
