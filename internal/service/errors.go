package service

import (
	"errors"
	"fmt"

	"github.com/clinicsys/clinic-api/internal/domain"
	"github.com/clinicsys/clinic-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel or domain errors for expected conditions
// 2. Unexpected errors are wrapped in ServiceError
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrUnauthenticated indicates the request carries no authenticated principal.
	// API layer should map this to HTTP 401 Unauthorized.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden indicates the principal lacks a required permission.
	// API layer should map this to HTTP 403 Forbidden.
	ErrForbidden = errors.New("permission denied")

	// ErrInvalidCredentials indicates a failed login. Unknown users and wrong
	// passwords are not told apart.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// PermissionError names the permission a caller was missing.
type PermissionError struct {
	Permission string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s: %s is required", ErrForbidden, e.Permission)
}

// Unwrap returns ErrForbidden.
func (e *PermissionError) Unwrap() error { return ErrForbidden }

// ServiceError wraps unexpected errors from a service operation with context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "create_student")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err for operation. Expected conditions (missing
// records, rule violations, validation and permission failures, stale
// updates) are returned unchanged so callers can match them directly.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if isExpected(err) {
		return err
	}
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

func isExpected(err error) bool {
	var validationErr *domain.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrConcurrencyConflict),
		errors.Is(err, domain.ErrBusinessRule),
		errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrInvalidCredentials),
		errors.As(err, &validationErr):
		return true
	}
	return false
}
