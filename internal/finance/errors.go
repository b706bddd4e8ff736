package finance

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is wrapped by every precondition failure reported by the engine.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError reports which numeric argument failed its precondition.
type InvalidInputError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s %g: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field string, value float64, reason string) error {
	return &InvalidInputError{Field: field, Value: value, Reason: reason}
}

func requirePositive(field string, v float64) error {
	if !(v > 0) || math.IsInf(v, 1) {
		return invalid(field, v, "must be positive")
	}
	return nil
}

func requireNonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return invalid(field, v, "must not be negative")
	}
	return nil
}

func requireFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(field, v, "must be a finite number")
	}
	return nil
}
