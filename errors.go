package isodata

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParams is returned by New when a hyperparameter is out of range.
	ErrInvalidParams = errors.New("invalid parameters")

	// ErrDataSize is returned when the dataset has fewer rows than the
	// target cluster count or the minimum cluster size.
	ErrDataSize = errors.New("data size error")

	// ErrLoad is returned when the data source itself fails.
	ErrLoad = errors.New("data source failed")

	// ErrNilSource is returned by New when no data source is supplied.
	ErrNilSource = errors.New("data source must not be nil")
)

// ErrInconsistentDimension indicates a dataset row whose length differs
// from the first row.
type ErrInconsistentDimension struct {
	Row      int
	Expected int
	Actual   int
}

func (e *ErrInconsistentDimension) Error() string {
	return fmt.Sprintf("row %d: dimension mismatch: expected %d, got %d", e.Row, e.Expected, e.Actual)
}

// Unwrap lets callers match every dataset validation failure with ErrDataSize.
func (e *ErrInconsistentDimension) Unwrap() error { return ErrDataSize }

func invalidParam(name string, value any, reason string) error {
	return fmt.Errorf("%w: %s=%v %s", ErrInvalidParams, name, value, reason)
}
