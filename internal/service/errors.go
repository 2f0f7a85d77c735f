// Package service provides business logic implementation for the application.
package service

import (
	"errors"
	"fmt"

	"github.com/insurang/lead-funnel/internal/validation"
)

// ErrRateLimited rejects a submission that exceeded the intake window.
var ErrRateLimited = errors.New("too many requests")

// ValidationError carries field-level messages back to the form.
type ValidationError struct {
	Fields validation.FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

// PersistenceError marks the single fatal step of the intake flow: the lead
// row could not be created.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist lead: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
