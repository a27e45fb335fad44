// Package persistence provides standardized error types for storage operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrRecordNotFound indicates a metadata record was not found by the
	// given code ID.
	ErrRecordNotFound = errors.New("metadata record not found")

	// ErrTxClosed indicates an operation was attempted on a transaction
	// that was already committed or rolled back.
	ErrTxClosed = errors.New("transaction already closed")
)

// RecordError wraps storage errors with operation context.
type RecordError struct {
	Op     string // Operation being performed (e.g., "GetByID", "Save")
	CodeID int64  // Record code ID if applicable
	Err    error  // Underlying error
}

func (e *RecordError) Error() string {
	if e.CodeID != 0 {
		return fmt.Sprintf("%s operation failed for record %d: %v", e.Op, e.CodeID, e.Err)
	}

	return fmt.Sprintf("%s operation failed: %v", e.Op, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

func (e *RecordError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewRecordError creates a new record error with context.
func NewRecordError(op string, codeID int64, err error) *RecordError {
	return &RecordError{
		Op:     op,
		CodeID: codeID,
		Err:    err,
	}
}

// IsRecordNotFound checks if an error indicates a record was not found.
func IsRecordNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}
