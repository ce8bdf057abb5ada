package epi

import (
	"errors"
	"fmt"
)

// Error categories for simulator construction and integration.
var (
	// ErrConfigType indicates a configuration value of the wrong shape or kind.
	ErrConfigType = errors.New("epi: configuration value has wrong type or shape")

	// ErrConfigValue indicates a well-typed configuration value outside its
	// valid range.
	ErrConfigValue = errors.New("epi: configuration value out of range")

	// ErrZeroPopulation indicates the vector field was evaluated on a state
	// with zero total population, where the dynamics are undefined.
	ErrZeroPopulation = errors.New("epi: total population is zero")

	// ErrIntegration indicates the numerical solver produced a non-finite
	// state and cannot continue.
	ErrIntegration = errors.New("epi: integration failed")
)

// IntegrationError wraps a solver failure with trajectory context.
type IntegrationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *IntegrationError) Unwrap() error {
	return e.Wrapped
}
