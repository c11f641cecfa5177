// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrConflict        = errors.New("conflicting state")
	ErrStateTransition = errors.New("invalid state transition")
	ErrRecordLocked    = errors.New("record is locked")
	ErrPeriodClosed    = errors.New("registration period is closed")

	// Capacity errors
	ErrCapacity = errors.New("capacity exhausted")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// External service errors
	ErrExternalService = errors.New("external service error")
	ErrTimeout         = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "grade", "registration", "placement"
	Op      string // Operation that failed, e.g., "Submit", "Finalize"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Validationf builds a validation error with a formatted message, typically
// naming the offending field.
func Validationf(domain, op, format string, args ...any) *DomainError {
	return NewDomainError(domain, op, ErrValidation, fmt.Sprintf(format, args...))
}

// Conflictf builds a conflict error with a formatted message, typically naming
// the current state that made the transition illegal.
func Conflictf(domain, op, format string, args ...any) *DomainError {
	return NewDomainError(domain, op, ErrConflict, fmt.Sprintf(format, args...))
}

// Student domain errors
var (
	ErrUserNotFound      = NewDomainError("student", "Find", ErrNotFound, "user not found")
	ErrUserAlreadyExists = NewDomainError("student", "Create", ErrAlreadyExists, "user already exists")
	ErrAccountSuspended  = NewDomainError("student", "CheckStatus", ErrForbidden, "account is suspended")
	ErrAccountDismissed  = NewDomainError("student", "CheckStatus", ErrForbidden, "student is dismissed")
)

// Grade domain errors
var (
	ErrGradeNotFound      = NewDomainError("grade", "Find", ErrNotFound, "grade record not found")
	ErrGradeAlreadyExists = NewDomainError("grade", "Create", ErrAlreadyExists, "grade already exists for student, course and academic year")
	ErrGradeLocked        = NewDomainError("grade", "Transition", ErrRecordLocked, "grade record is locked")
)

// Registration domain errors
var (
	ErrRegistrationNotFound = NewDomainError("registration", "Find", ErrNotFound, "registration not found")
	ErrAlreadyRegistered    = NewDomainError("registration", "Create", ErrAlreadyExists, "registration already exists for this semester")
	ErrPeriodNotOpen        = NewDomainError("registration", "CheckPeriod", ErrPeriodClosed, "no open registration period")
	ErrCourseNotFound       = NewDomainError("course", "Find", ErrNotFound, "course not found")
)

// Placement domain errors
var (
	ErrPlacementNotFound      = NewDomainError("placement", "Find", ErrNotFound, "placement request not found")
	ErrPlacementAlreadyExists = NewDomainError("placement", "Create", ErrAlreadyExists, "placement request already exists for this academic year")
	ErrDepartmentFull         = NewDomainError("placement", "Approve", ErrCapacity, "department has no remaining placement capacity")
)

// Evaluation domain errors
var (
	ErrEvaluationNotFound = NewDomainError("evaluation", "Find", ErrNotFound, "evaluation not found")
	ErrEvaluationExists   = NewDomainError("evaluation", "Create", ErrAlreadyExists, "evaluation already submitted for this course")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsConflict checks if the error is a state-conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrStateTransition) ||
		errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrRecordLocked) ||
		errors.Is(err, ErrConcurrentModification)
}

// IsCapacity checks if the error is a capacity error.
func IsCapacity(err error) bool {
	return errors.Is(err, ErrCapacity)
}

// IsUnauthorized checks if the error is an authorization error.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}
