package predict

import (
	"errors"
	"fmt"
)

// Sentinel kinds for prediction errors. These allow errors.Is from callers.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrComputation  = errors.New("prediction failed")
)

// ValidationError reports a malformed feature vector: wrong arity or an
// element that is not a number.
type ValidationError struct {
	// Field names the offending input, e.g. "data" or "data[3] (AveBedrms)".
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// Is reports kind membership so errors.Is(err, ErrInvalidInput) holds.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// ComputationError reports a failure inside the arithmetic itself.
type ComputationError struct {
	Cause error
}

func (e *ComputationError) Error() string {
	if e.Cause == nil {
		return ErrComputation.Error()
	}
	return fmt.Sprintf("%s: %v", ErrComputation, e.Cause)
}

func (e *ComputationError) Unwrap() error { return e.Cause }

// Is reports kind membership so errors.Is(err, ErrComputation) holds.
func (e *ComputationError) Is(target error) bool { return target == ErrComputation }

// arityError builds the length mismatch error for n supplied values.
func arityError(field string, n int) *ValidationError {
	return &ValidationError{
		Field:  field,
		Reason: fmt.Sprintf("expected %d features, got %d", featureCount, n),
	}
}
