package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrBusinessRule is the parent of every user-facing business rule violation.
	// Errors wrapping it are surfaced to callers as rule failures, never as faults.
	ErrBusinessRule = errors.New("business rule violated")
)

// Business error codes exposed to API clients.
const (
	CodeStudentUnderAge       = "Student:MustBe18OrOlder"
	CodeStudentDuplicateEmail = "Student:DuplicateEmail"
)

// ValidationError describes a single field that failed validation.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for the given field.
// If err is nil, ErrValidation is wrapped.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Err, e.Message)
	}
	return fmt.Sprintf("%s: %s %s", e.Err, e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BusinessError is implemented by rule violations that carry a stable code
// and structured details for clients.
type BusinessError interface {
	error
	Code() string
	Details() map[string]any
}

// AgeRestrictionError is returned when a student is younger than MinimumAge.
type AgeRestrictionError struct {
	MinimumAge int
	Age        int
}

func (e *AgeRestrictionError) Error() string {
	return fmt.Sprintf("student must be at least %d years old (got %d)", e.MinimumAge, e.Age)
}

func (e *AgeRestrictionError) Unwrap() error { return ErrBusinessRule }

// Code implements BusinessError.
func (e *AgeRestrictionError) Code() string { return CodeStudentUnderAge }

// Details implements BusinessError.
func (e *AgeRestrictionError) Details() map[string]any {
	return map[string]any{"MinimumAge": e.MinimumAge}
}

// DuplicateEmailError is returned when another active student in the same
// tenant already uses the email.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("a student with email %q already exists", e.Email)
}

func (e *DuplicateEmailError) Unwrap() error { return ErrBusinessRule }

// Code implements BusinessError.
func (e *DuplicateEmailError) Code() string { return CodeStudentDuplicateEmail }

// Details implements BusinessError.
func (e *DuplicateEmailError) Details() map[string]any {
	return map[string]any{"Email": e.Email}
}

var (
	_ BusinessError = (*AgeRestrictionError)(nil)
	_ BusinessError = (*DuplicateEmailError)(nil)
)
