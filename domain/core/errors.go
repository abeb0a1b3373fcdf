package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)

	// Data validation errors
	ErrInsufficientData  = errors.New("insufficient data for analysis")
	ErrInvalidProportion = errors.New("proportion outside [0,1]")
	ErrZeroVariance      = errors.New("zero variance in sample")

	// Sequencing errors
	ErrNotComputed = errors.New("prerequisite not computed")
)

// Error constructors with context
func NewColumnNotFoundError(name string) error {
	return fmt.Errorf("%w %q", ErrColumnNotFound, name)
}

func NewInsufficientDataError(what string, n int) error {
	return fmt.Errorf("%w: %s has %d values", ErrInsufficientData, what, n)
}

func NewInvalidProportionError(label string, p float64) error {
	return fmt.Errorf("%w: %s = %v", ErrInvalidProportion, label, p)
}

func NewNotComputedError(step string) error {
	return fmt.Errorf("%w: run %s first", ErrNotComputed, step)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDataError(err error) bool {
	return errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrInvalidProportion) ||
		errors.Is(err, ErrZeroVariance)
}

func IsSequencingError(err error) bool {
	return errors.Is(err, ErrNotComputed)
}
