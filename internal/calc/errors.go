// Package calc implements the personal-finance calculators behind the tools
// and planner views: loan amortization (EMI), recurring-contribution growth
// (SIP), savings-goal projection, slab income tax and savings progress.
//
// Every calculator is a pure function of a parameter struct. Invalid input is
// rejected with an *InputError before any arithmetic runs, so callers never
// see NaN or Inf in a result.
package calc

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is the sentinel wrapped by every *InputError.
var ErrInvalidInput = errors.New("calc: invalid input")

// InputError describes a rejected parameter.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("calc: invalid %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, ErrInvalidInput) match.
func (e *InputError) Unwrap() error { return ErrInvalidInput }

func invalid(field, reason string) error {
	return &InputError{Field: field, Reason: reason}
}

func requirePositive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(field, "must be a finite number")
	}
	if v <= 0 {
		return invalid(field, "must be greater than zero")
	}
	return nil
}

func requireNonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(field, "must be a finite number")
	}
	if v < 0 {
		return invalid(field, "must not be negative")
	}
	return nil
}

// monthlyRate converts an annual percentage into a per-month fraction.
func monthlyRate(annualRatePercent float64) float64 {
	return annualRatePercent / 12 / 100
}
