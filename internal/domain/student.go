package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Field limits and rules for Student records.
const (
	MaxFirstNameLength   = 64
	MaxLastNameLength    = 64
	MaxEmailLength       = 256
	MaxPhoneNumberLength = 20
	MaxAddressLength     = 512
	MinimumAge           = 18
)

// Student is a tenant-scoped student record. It is the aggregate root of the
// students module and is only ever deleted logically.
//
// Name and contact fields are mutated through the setters so that their
// bounds hold at all times.
type Student struct {
	ID       uuid.UUID
	TenantID *uuid.UUID

	firstName   string
	lastName    string
	dateOfBirth time.Time
	email       *string
	phoneNumber *string
	address     *string

	CreationTime         time.Time
	CreatorID            *uuid.UUID
	LastModificationTime *time.Time
	LastModifierID       *uuid.UUID
	IsDeleted            bool
	DeleterID            *uuid.UUID
	DeletionTime         *time.Time
	ConcurrencyStamp     string
}

// NewStudent creates a Student, applying every field through its setter.
func NewStudent(
	id uuid.UUID,
	tenantID *uuid.UUID,
	firstName, lastName string,
	dateOfBirth time.Time,
	email, phoneNumber, address *string,
	now time.Time,
) (*Student, error) {
	if id == uuid.Nil {
		return nil, NewValidationError("id", "cannot be empty", ErrInvalidID)
	}

	s := &Student{
		ID:               id,
		TenantID:         tenantID,
		CreationTime:     now.UTC(),
		ConcurrencyStamp: NewConcurrencyStamp(),
	}
	if err := s.apply(firstName, lastName, dateOfBirth, email, phoneNumber, address); err != nil {
		return nil, err
	}
	return s, nil
}

// RestoreStudent rebuilds a Student from persisted values without
// re-running validation. It is meant for store implementations only.
func RestoreStudent(s Student, firstName, lastName string, dateOfBirth time.Time, email, phoneNumber, address *string) *Student {
	s.firstName = firstName
	s.lastName = lastName
	s.dateOfBirth = dateOfBirth
	s.email = email
	s.phoneNumber = phoneNumber
	s.address = address
	return &s
}

// Change replaces the editable fields in one step. On error the student is
// left untouched.
func (s *Student) Change(firstName, lastName string, dateOfBirth time.Time, email, phoneNumber, address *string) error {
	next := *s
	if err := next.apply(firstName, lastName, dateOfBirth, email, phoneNumber, address); err != nil {
		return err
	}
	*s = next
	return nil
}

func (s *Student) apply(firstName, lastName string, dateOfBirth time.Time, email, phoneNumber, address *string) error {
	if err := s.SetFirstName(firstName); err != nil {
		return err
	}
	if err := s.SetLastName(lastName); err != nil {
		return err
	}
	if err := s.SetDateOfBirth(dateOfBirth); err != nil {
		return err
	}
	if err := s.SetEmail(email); err != nil {
		return err
	}
	if err := s.SetPhoneNumber(phoneNumber); err != nil {
		return err
	}
	return s.SetAddress(address)
}

func (s *Student) FirstName() string      { return s.firstName }
func (s *Student) LastName() string       { return s.lastName }
func (s *Student) DateOfBirth() time.Time { return s.dateOfBirth }
func (s *Student) Email() *string         { return s.email }
func (s *Student) PhoneNumber() *string   { return s.phoneNumber }
func (s *Student) Address() *string       { return s.address }

// SetFirstName sets the first name. Blank or over-long values are rejected.
func (s *Student) SetFirstName(firstName string) error {
	v, err := requiredString("firstName", firstName, MaxFirstNameLength)
	if err != nil {
		return err
	}
	s.firstName = v
	return nil
}

// SetLastName sets the last name. Blank or over-long values are rejected.
func (s *Student) SetLastName(lastName string) error {
	v, err := requiredString("lastName", lastName, MaxLastNameLength)
	if err != nil {
		return err
	}
	s.lastName = v
	return nil
}

// SetDateOfBirth sets the date of birth, keeping only the calendar date.
func (s *Student) SetDateOfBirth(dateOfBirth time.Time) error {
	if dateOfBirth.IsZero() {
		return NewValidationError("dateOfBirth", "is required", nil)
	}
	s.dateOfBirth = dateOnly(dateOfBirth)
	return nil
}

// SetEmail sets the optional email address.
func (s *Student) SetEmail(email *string) error {
	v, err := optionalString("email", email, MaxEmailLength)
	if err != nil {
		return err
	}
	s.email = v
	return nil
}

// SetPhoneNumber sets the optional phone number.
func (s *Student) SetPhoneNumber(phoneNumber *string) error {
	v, err := optionalString("phoneNumber", phoneNumber, MaxPhoneNumberLength)
	if err != nil {
		return err
	}
	s.phoneNumber = v
	return nil
}

// SetAddress sets the optional postal address.
func (s *Student) SetAddress(address *string) error {
	v, err := optionalString("address", address, MaxAddressLength)
	if err != nil {
		return err
	}
	s.address = v
	return nil
}

// AgeAt returns the student's age on the given date.
func (s *Student) AgeAt(ref time.Time) int {
	return CalculateAge(s.dateOfBirth, ref)
}

// NewConcurrencyStamp returns a fresh optimistic-concurrency token.
func NewConcurrencyStamp() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func requiredString(field, value string, maxLen int) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", NewValidationError(field, "cannot be empty", nil)
	}
	if utf8.RuneCountInString(value) > maxLen {
		return "", NewValidationError(field, fmt.Sprintf("cannot exceed %d characters", maxLen), nil)
	}
	return value, nil
}

// optionalString treats nil and "" alike as absent.
func optionalString(field string, value *string, maxLen int) (*string, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(*value) > maxLen {
		return nil, NewValidationError(field, fmt.Sprintf("cannot exceed %d characters", maxLen), nil)
	}
	v := *value
	return &v, nil
}
