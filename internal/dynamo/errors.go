package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for engine operations.
var (
	// ErrInvalidParameter indicates a model or run parameter outside its valid range.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrNonFiniteState indicates a step produced NaN or Inf.
	ErrNonFiniteState = errors.New("dynamo: non-finite state (NaN or Inf detected)")

	// ErrOutOfRange indicates a comparison time outside the reference coverage.
	ErrOutOfRange = errors.New("dynamo: time outside reference coverage")

	// ErrDimensionMismatch indicates mismatched state dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrMalformedInput indicates non-numeric text where a number is required.
	ErrMalformedInput = errors.New("dynamo: malformed numeric input")

	// ErrUnknownMethod indicates a stepper kind with no implementation.
	ErrUnknownMethod = errors.New("dynamo: unknown stepping method")

	// ErrUnknownModel indicates a model name missing from the catalog.
	ErrUnknownModel = errors.New("dynamo: unknown model")
)

// SimulationError wraps an error with the step at which it occurred.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// InvalidParameter builds an ErrInvalidParameter naming the offending value.
func InvalidParameter(name string, value float64, reason string) error {
	return fmt.Errorf("%w: %s=%g %s", ErrInvalidParameter, name, value, reason)
}
