package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks caller-side precondition violations: empty trade
// series, nonpositive capital, out-of-range percentile or tolerance.
var ErrInvalidInput = errors.New("invalid input")

func invalidInputf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// ComputationError reports a failure inside a repetition trial, carrying
// the fraction and repetition in flight for diagnosis. Any single trial's
// ComputationError aborts the whole batch.
type ComputationError struct {
	Fraction   float64
	Repetition int
	Reason     string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation failed at repetition %d (fraction %.6f): %s",
		e.Repetition, e.Fraction, e.Reason)
}
