package api

import (
	"errors"
	"net/http"

	"github.com/clinicsys/clinic-api/internal/api/shared"
	"github.com/clinicsys/clinic-api/internal/domain"
	"github.com/clinicsys/clinic-api/internal/service"
	"github.com/clinicsys/clinic-api/internal/service/auth"
	"github.com/clinicsys/clinic-api/internal/store"
	"github.com/go-playground/validator/v10"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var ageErr *domain.AgeRestrictionError
	var dupErr *domain.DuplicateEmailError
	var validationErrs validator.ValidationErrors

	switch {
	// Business rules
	case errors.As(err, &ageErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &dupErr),
		errors.Is(err, store.ErrConcurrencyConflict),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Authentication errors
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var bizErr domain.BusinessError
	var fieldErr *domain.ValidationError
	var validationErrs validator.ValidationErrors

	switch {
	// Business rule messages are written for clients.
	case errors.As(err, &bizErr):
		return bizErr.Error()

	case errors.As(err, &validationErrs):
		return shared.DescribeValidationError(validationErrs)
	case errors.As(err, &fieldErr):
		if fieldErr.Field == "" {
			return "Invalid request: " + fieldErr.Message
		}
		return "Invalid " + fieldErr.Field + ": " + fieldErr.Message

	case errors.Is(err, store.ErrConcurrencyConflict):
		return "The record was changed by someone else, reload and try again"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"
	case errors.Is(err, service.ErrUnauthenticated):
		return "Authentication required"

	case errors.Is(err, service.ErrForbidden):
		return "You are not allowed to perform this operation"

	case errors.Is(err, store.ErrStudentNotFound):
		return "Student not found"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps err to a status and a safe message and writes the error
// response. fallback replaces the message of unexpected (5xx) errors when set.
// Business rule violations carry their code and details.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	var bizErr domain.BusinessError
	if errors.As(err, &bizErr) {
		opts = append(opts, shared.WithErrorCode(bizErr.Code(), bizErr.Details()))
	}
	if status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
