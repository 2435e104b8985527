package artifact

import (
	"fmt"
	"time"
)

// StoreError represents an error from a store backend.
type StoreError struct {
	Backend   string // Store backend type ("memory", "sqlite", "mysql", "redis")
	Operation string // Operation that failed ("save", "list", "load", ...)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// NewStoreError creates a new StoreError.
func NewStoreError(backend, operation string, cause error) *StoreError {
	return &StoreError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

// TimeoutError is returned when a store call exceeds its deadline.
type TimeoutError struct {
	Operation string        // Operation that timed out
	Timeout   time.Duration // Deadline that was exceeded
	Cause     error         // Underlying error, usually context.DeadlineExceeded
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("store timeout [operation=%s, timeout=%s]: %v", e.Operation, e.Timeout, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(operation string, timeout time.Duration, cause error) *TimeoutError {
	return &TimeoutError{
		Operation: operation,
		Timeout:   timeout,
		Cause:     cause,
	}
}
