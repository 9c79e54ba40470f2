package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input shape errors
	ErrInputShape          = errors.New("invalid input shape")
	ErrEmptyInput          = fmt.Errorf("%w: array data cannot be empty", ErrInputShape)
	ErrEmptyFactors        = fmt.Errorf("%w: array must have at least one factor", ErrInputShape)
	ErrRaggedRows          = fmt.Errorf("%w: all rows must have the same number of columns", ErrInputShape)
	ErrNegativeLevel       = fmt.Errorf("%w: level values must be non-negative", ErrInputShape)
	ErrLevelTooLarge       = fmt.Errorf("%w: level values must fit in 32 bits", ErrInputShape)
	ErrEmptyResponse       = fmt.Errorf("%w: response data is empty", ErrInputShape)
	ErrRowCountMismatch    = fmt.Errorf("%w: array data and response data must have same number of runs", ErrInputShape)
	ErrFactorCountMismatch = fmt.Errorf("%w: factor labels must match number of columns", ErrInputShape)

	// Parameter errors
	ErrParameter       = errors.New("invalid parameters")
	ErrLevelOutOfRange = fmt.Errorf("%w: level value outside declared range", ErrParameter)

	// Construction errors
	ErrInfeasibleConstruction = errors.New("no construction available")

	// Collaborator errors
	ErrExternalEngine    = errors.New("external engine failure")
	ErrEngineUnavailable = errors.New("external engine not configured")

	// Storage and file errors
	ErrIO       = errors.New("i/o failure")
	ErrNotFound = errors.New("resource not found")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, resource, id)
}

func NewRaggedRowError(row, got, want int) error {
	return fmt.Errorf("%w: row %d has %d columns, expected %d", ErrRaggedRows, row, got, want)
}

func NewParameterError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrParameter, field, reason)
}

func NewExternalEngineError(operation string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrExternalEngine, operation, err)
}

func NewIOError(operation string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, operation, err)
}
