package service

import (
	"errors"
	"testing"

	"github.com/clinicsys/clinic-api/internal/domain"
	"github.com/clinicsys/clinic-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestNewServiceError(t *testing.T) {
	assert.NoError(t, NewServiceError("op", "msg", nil))

	passthrough := []error{
		store.ErrStudentNotFound,
		store.ErrConcurrencyConflict,
		&domain.AgeRestrictionError{MinimumAge: 18, Age: 17},
		&domain.DuplicateEmailError{Email: "a@example.com"},
		domain.NewValidationError("firstName", "cannot be empty", nil),
		ErrUnauthenticated,
		&PermissionError{Permission: domain.PermissionStudents},
	}
	for _, err := range passthrough {
		assert.Same(t, err, NewServiceError("op", "msg", err), "%v", err)
	}

	boom := errors.New("boom")
	err := NewServiceError("create_student", "failed to create student", boom)
	var svcErr *ServiceError
	assert.ErrorAs(t, err, &svcErr)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "create_student failed: failed to create student: boom", err.Error())
}

func TestPermissionError(t *testing.T) {
	err := &PermissionError{Permission: domain.PermissionStudentsDelete}
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Contains(t, err.Error(), domain.PermissionStudentsDelete)
}
