// Package errors provides structured error types for the Wotan analyzer.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes map to the analyzer's failure taxonomy:
//   - INVALID_*: configuration errors (bad selector, missing parameter)
//   - GRAPH_*: graph-consistency violations (distance mismatch, bad node role)
//   - CAPACITY_*: a bucket index or path weight exceeded its allocated bound
//   - NUMERIC_*: a probability or increment escaped its valid range
//   - WORKER_*: worker-pool infrastructure failures
//
// None of these conditions are transient: every one indicates a programming
// or data invariant violation, and callers are expected to abort the run and
// discard partial results rather than retry.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidStrategy, "unknown strategy: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidStrategy) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeWorkerFailed, origErr, "worker %d", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidStrategy Code = "INVALID_STRATEGY"
	ErrCodeMissingParam    Code = "MISSING_PARAMETER"
	ErrCodeInvalidGraph    Code = "INVALID_GRAPH"

	// Graph-consistency errors
	ErrCodeDistanceMismatch Code = "GRAPH_DISTANCE_MISMATCH"
	ErrCodeNodeRole         Code = "GRAPH_NODE_ROLE"
	ErrCodeFootprint        Code = "GRAPH_FOOTPRINT"

	// Capacity errors
	ErrCodeBucketBound Code = "CAPACITY_BUCKET_BOUND"
	ErrCodeQueueBound  Code = "CAPACITY_QUEUE_BOUND"

	// Numeric-invariant errors
	ErrCodeProbabilityRange  Code = "NUMERIC_PROBABILITY_RANGE"
	ErrCodeNegativeIncrement Code = "NUMERIC_NEGATIVE_INCREMENT"
	ErrCodeInconsistentProbs Code = "NUMERIC_INCONSISTENT_PIN_PROBS"

	// Concurrency-infrastructure errors
	ErrCodeWorkerFailed Code = "WORKER_FAILED"

	// Resource not found (API layer)
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
