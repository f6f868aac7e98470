package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clinicsys/clinic-api/internal/domain"
	"github.com/clinicsys/clinic-api/internal/service"
	"github.com/clinicsys/clinic-api/internal/service/auth"
	"github.com/clinicsys/clinic-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"under age", &domain.AgeRestrictionError{MinimumAge: 18, Age: 17}, http.StatusUnprocessableEntity},
		{"duplicate email", &domain.DuplicateEmailError{Email: "a@b.c"}, http.StatusConflict},
		{"wrapped duplicate", service.NewServiceError("create_student", "x", &domain.DuplicateEmailError{}), http.StatusConflict},
		{"concurrency", store.ErrConcurrencyConflict, http.StatusConflict},
		{"validation", domain.NewValidationError("firstName", "cannot be empty", nil), http.StatusBadRequest},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest},
		{"unauthenticated", service.ErrUnauthenticated, http.StatusUnauthorized},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"forbidden", &service.PermissionError{Permission: domain.PermissionStudentsDelete}, http.StatusForbidden},
		{"student not found", store.ErrStudentNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", store.ErrUserNotFound), http.StatusNotFound},
		{"unexpected", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	assert.Equal(t, "An unexpected error occurred",
		GetSafeErrorMessage(errors.New("pq: password authentication failed for user admin")))
	assert.Equal(t, "Student not found", GetSafeErrorMessage(store.ErrStudentNotFound))
	assert.Equal(t, "Invalid firstName: cannot be empty",
		GetSafeErrorMessage(domain.NewValidationError("firstName", "cannot be empty", nil)))
	assert.Contains(t, GetSafeErrorMessage(&domain.AgeRestrictionError{MinimumAge: 18, Age: 16}), "18")
}

func TestHandleAPIError(t *testing.T) {
	t.Parallel()

	t.Run("business error carries code and details", func(t *testing.T) {
		t.Parallel()
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/students", nil)

		HandleAPIError(rr, req, &domain.AgeRestrictionError{MinimumAge: 18, Age: 17}, "")

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		resp := decodeError(t, rr)
		assert.Equal(t, domain.CodeStudentUnderAge, resp.Code)
		assert.EqualValues(t, 18, resp.Details["MinimumAge"])
	})

	t.Run("fallback replaces unexpected messages", func(t *testing.T) {
		t.Parallel()
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/students", nil)

		HandleAPIError(rr, req, errors.New("dial tcp 10.0.0.1:5432: secret"), "Failed to list students")

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		resp := decodeError(t, rr)
		assert.Equal(t, "Failed to list students", resp.Error)
		assert.Empty(t, resp.Code)
		assert.NotContains(t, rr.Body.String(), "10.0.0.1")
	})

	t.Run("fallback ignored for expected errors", func(t *testing.T) {
		t.Parallel()
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/students/x", nil)

		HandleAPIError(rr, req, store.ErrStudentNotFound, "Failed to get student")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Student not found", decodeError(t, rr).Error)
	})
}
