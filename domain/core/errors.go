package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input validation errors
	ErrInvalidParameter = errors.New("invalid parameter")

	// Degenerate-query errors: a well-formed query with an undefined answer
	ErrDivisionByZero = errors.New("division by zero")

	// Model fitting errors
	ErrInsufficientData = errors.New("insufficient observations")
	ErrSingularModel    = errors.New("singular design matrix")

	// Cooperative cancellation
	ErrCancelled = errors.New("computation cancelled")
)

// Error constructors with context

// NewInvalidParameterError reports which invariant a parameter violated.
func NewInvalidParameterError(field, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidParameter, field, reason)
}

// NewDivisionByZeroError reports the quantity whose denominator vanished.
func NewDivisionByZeroError(quantity string) error {
	return fmt.Errorf("%w: %s evaluates to zero", ErrDivisionByZero, quantity)
}

// NewInsufficientDataError reports an under-determined fitting problem.
func NewInsufficientDataError(have, need int) error {
	return fmt.Errorf("%w: have %d, need at least %d", ErrInsufficientData, have, need)
}

// NewCancelledError wraps the context error that aborted a computation.
func NewCancelledError(cause error) error {
	return fmt.Errorf("%w: %v", ErrCancelled, cause)
}

// Error checking helpers
func IsInvalidParameter(err error) bool {
	return errors.Is(err, ErrInvalidParameter)
}

func IsDivisionByZero(err error) bool {
	return errors.Is(err, ErrDivisionByZero)
}

func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

func IsModelError(err error) bool {
	return errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrSingularModel)
}
