package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNewStudent(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 27, 10, 30, 0, 0, time.UTC)
	tenant := uuid.New()
	id := uuid.New()

	s, err := NewStudent(id, &tenant, "Ada", "Lovelace", date(2000, 6, 15),
		strPtr("ada@example.com"), strPtr(""), nil, now)
	require.NoError(t, err)

	assert.Equal(t, id, s.ID)
	assert.Equal(t, &tenant, s.TenantID)
	assert.Equal(t, "Ada", s.FirstName())
	assert.Equal(t, "Lovelace", s.LastName())
	assert.Equal(t, date(2000, 6, 15), s.DateOfBirth())
	require.NotNil(t, s.Email())
	assert.Equal(t, "ada@example.com", *s.Email())
	assert.Nil(t, s.PhoneNumber(), "empty optional values are stored as nil")
	assert.Nil(t, s.Address())
	assert.Equal(t, now, s.CreationTime)
	assert.Len(t, s.ConcurrencyStamp, 32)
	assert.False(t, s.IsDeleted)
	assert.Equal(t, 25, s.AgeAt(now))
}

func TestNewStudent_Validation(t *testing.T) {
	t.Parallel()

	now := time.Now()
	dob := date(2000, 1, 1)

	tests := []struct {
		name      string
		id        uuid.UUID
		first     string
		last      string
		dob       time.Time
		email     *string
		phone     *string
		address   *string
		wantField string
	}{
		{"nil id", uuid.Nil, "A", "B", dob, nil, nil, nil, "id"},
		{"blank first name", uuid.New(), "   ", "B", dob, nil, nil, nil, "firstName"},
		{"long first name", uuid.New(), strings.Repeat("a", MaxFirstNameLength+1), "B", dob, nil, nil, nil, "firstName"},
		{"empty last name", uuid.New(), "A", "", dob, nil, nil, nil, "lastName"},
		{"long last name", uuid.New(), "A", strings.Repeat("b", MaxLastNameLength+1), dob, nil, nil, nil, "lastName"},
		{"missing date of birth", uuid.New(), "A", "B", time.Time{}, nil, nil, nil, "dateOfBirth"},
		{"long email", uuid.New(), "A", "B", dob, strPtr(strings.Repeat("e", MaxEmailLength+1)), nil, nil, "email"},
		{"long phone", uuid.New(), "A", "B", dob, nil, strPtr(strings.Repeat("1", MaxPhoneNumberLength+1)), nil, "phoneNumber"},
		{"long address", uuid.New(), "A", "B", dob, nil, nil, strPtr(strings.Repeat("x", MaxAddressLength+1)), "address"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewStudent(tt.id, nil, tt.first, tt.last, tt.dob, tt.email, tt.phone, tt.address, now)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestStudentSetters_BoundaryLengths(t *testing.T) {
	t.Parallel()

	s := &Student{}
	assert.NoError(t, s.SetFirstName(strings.Repeat("é", MaxFirstNameLength)), "limit counts characters")
	assert.NoError(t, s.SetLastName(strings.Repeat("b", MaxLastNameLength)))
	assert.NoError(t, s.SetEmail(strPtr(strings.Repeat("e", MaxEmailLength))))
	assert.NoError(t, s.SetPhoneNumber(strPtr(strings.Repeat("1", MaxPhoneNumberLength))))
	assert.NoError(t, s.SetAddress(strPtr(strings.Repeat("x", MaxAddressLength))))
}

func TestStudentSetters_KeepPreviousValueOnError(t *testing.T) {
	t.Parallel()

	s, err := NewStudent(uuid.New(), nil, "Grace", "Hopper", date(1990, 12, 9), strPtr("g@example.com"), nil, nil, time.Now())
	require.NoError(t, err)

	assert.Error(t, s.SetFirstName(""))
	assert.Equal(t, "Grace", s.FirstName())

	assert.Error(t, s.SetEmail(strPtr(strings.Repeat("e", MaxEmailLength+1))))
	assert.Equal(t, "g@example.com", *s.Email())

	require.NoError(t, s.SetEmail(nil))
	assert.Nil(t, s.Email())
}

func TestStudentSetDateOfBirth_DropsClock(t *testing.T) {
	t.Parallel()

	s := &Student{}
	loc := time.FixedZone("UTC+5", 5*60*60)
	require.NoError(t, s.SetDateOfBirth(time.Date(2001, 3, 4, 22, 15, 0, 0, loc)))

	assert.Equal(t, date(2001, 3, 4), s.DateOfBirth())
}

func TestRestoreStudent(t *testing.T) {
	t.Parallel()

	deletedAt := time.Now().UTC()
	base := Student{ID: uuid.New(), IsDeleted: true, DeletionTime: &deletedAt, ConcurrencyStamp: "abc"}

	s := RestoreStudent(base, "X", "Y", date(1999, 9, 9), nil, strPtr("123"), nil)

	assert.Equal(t, base.ID, s.ID)
	assert.True(t, s.IsDeleted)
	assert.Equal(t, "X", s.FirstName())
	assert.Equal(t, "123", *s.PhoneNumber())
	assert.Equal(t, "abc", s.ConcurrencyStamp)
}

func TestBusinessErrors(t *testing.T) {
	t.Parallel()

	var ageErr error = &AgeRestrictionError{MinimumAge: MinimumAge, Age: 17}
	assert.ErrorIs(t, ageErr, ErrBusinessRule)

	var be BusinessError
	require.ErrorAs(t, ageErr, &be)
	assert.Equal(t, CodeStudentUnderAge, be.Code())
	assert.Equal(t, map[string]any{"MinimumAge": 18}, be.Details())

	var dupErr error = &DuplicateEmailError{Email: "a@b.c"}
	assert.ErrorIs(t, dupErr, ErrBusinessRule)
	require.ErrorAs(t, dupErr, &be)
	assert.Equal(t, CodeStudentDuplicateEmail, be.Code())
	assert.Equal(t, map[string]any{"Email": "a@b.c"}, be.Details())

	verr := NewValidationError("firstName", "cannot be empty", nil)
	assert.ErrorIs(t, verr, ErrValidation)
	assert.Equal(t, "validation failed: firstName cannot be empty", verr.Error())
}

func TestStudentChange_IsAllOrNothing(t *testing.T) {
	t.Parallel()

	s, err := NewStudent(uuid.New(), nil, "Alan", "Turing", date(1990, 6, 23), nil, nil, nil, time.Now())
	require.NoError(t, err)

	err = s.Change("Alan M.", "", date(1991, 6, 23), strPtr("alan@example.com"), nil, nil)
	require.Error(t, err)
	assert.Equal(t, "Alan", s.FirstName())
	assert.Nil(t, s.Email())

	require.NoError(t, s.Change("Alan M.", "Turing", date(1991, 6, 23), strPtr("alan@example.com"), nil, nil))
	assert.Equal(t, "Alan M.", s.FirstName())
	assert.Equal(t, date(1991, 6, 23), s.DateOfBirth())
	assert.Equal(t, "alan@example.com", *s.Email())
}
