// Package services implements the metadata publication workflow: saving
// drafts, publishing records, and submitting them to the upstream
// software center, plus the pre-publication validation gate.
package services

import (
	"errors"
	"fmt"

	"github.com/codecatalog/codecatalog/pkg/persistence"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// ErrRecordNotFound is returned when the referenced code ID is not on
	// file.
	ErrRecordNotFound = persistence.ErrRecordNotFound

	// ErrNotOwner is returned when a caller tries to modify a record owned
	// by another identity (403 Forbidden).
	ErrNotOwner = errors.New("record is owned by another user")

	// ErrUpstreamRejected is returned when the software center refuses a
	// submission; the local transaction is rolled back (502 Bad Gateway).
	ErrUpstreamRejected = errors.New("upstream publication rejected")
)

// ServiceError wraps workflow errors with operation context.
type ServiceError struct {
	Op      string // Operation name
	CodeID  int64  // Record identifier, 0 when unassigned
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewServiceError creates a workflow error with operation context.
func NewServiceError(op string, codeID int64, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		CodeID:  codeID,
		Message: message,
		Err:     err,
	}
}

// IsNotFound checks if an error means the record does not exist (404).
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}

// IsForbidden checks if an error is an ownership violation (403).
func IsForbidden(err error) bool {
	return errors.Is(err, ErrNotOwner)
}

// IsUpstreamRejection checks if an error came from the software center
// refusing a submission (502).
func IsUpstreamRejection(err error) bool {
	return errors.Is(err, ErrUpstreamRejected)
}
