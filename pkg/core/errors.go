// Package core provides the recall engine service and its public types.
package core

import (
	"errors"
	"fmt"
)

// Predefined errors for common failure scenarios.
var (
	// ErrNotFound indicates that a requested memory was not found.
	ErrNotFound = errors.New("memory not found")

	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidInput indicates that the provided input is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidScope indicates that an owner or session identifier is malformed.
	ErrInvalidScope = errors.New("invalid scope")

	// ErrStoreUnavailable indicates that the durable memory store cannot be reached.
	ErrStoreUnavailable = errors.New("memory store unavailable")

	// ErrStrategyTimeout indicates that a recall strategy exceeded its time budget.
	ErrStrategyTimeout = errors.New("strategy timed out")

	// ErrClosed indicates that the service has been closed.
	ErrClosed = errors.New("service closed")
)

// RecallError wraps errors with operation context.
//
// It provides additional context about which operation failed,
// making error messages more informative for debugging.
//
// Example:
//
//	err := &RecallError{
//	    Op:  "Recall",
//	    Err: ErrInvalidScope,
//	}
//	// Error() returns: "recall: Recall: invalid scope"
type RecallError struct {
	// Op is the name of the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message.
//
// The format is: "recall: <Op>: <Err>"
func (e *RecallError) Error() string {
	return fmt.Sprintf("recall: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
//
// This allows using errors.Is() and errors.As() with RecallError.
func (e *RecallError) Unwrap() error {
	return e.Err
}

// NewRecallError creates a new RecallError wrapping the given error.
//
// If err is nil, returns nil. This allows safe error wrapping:
//
//	if err != nil {
//	    return NewRecallError("Store", err)
//	}
func NewRecallError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RecallError{
		Op:  op,
		Err: err,
	}
}
