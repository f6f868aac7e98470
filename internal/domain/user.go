package domain

import (
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID       = errors.New("user ID cannot be empty")
	ErrInvalidEmail      = errors.New("invalid email format")
	ErrEmptyEmail        = errors.New("email cannot be empty")
	ErrPasswordTooShort  = errors.New("password must be at least 12 characters long")
	ErrPasswordTooLong   = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword     = errors.New("password cannot be empty")
	ErrUnknownPermission = errors.New("unknown permission")
)

// User is an operator account that can sign in and act on students.
// A nil TenantID marks a host user.
type User struct {
	ID             uuid.UUID  `json:"id"`
	TenantID       *uuid.UUID `json:"tenant_id,omitempty"`
	Email          string     `json:"email"`
	Password       string     `json:"-"` // Plaintext password, used temporarily during creation/updates
	HashedPassword string     `json:"-"`
	Permissions    []string   `json:"permissions"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewUser creates a new User with the given email, password and grants.
//
// The caller is responsible for hashing the password before storing the user.
func NewUser(tenantID *uuid.UUID, email, password string, permissions []string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Email:       email,
		Password:    password,
		Permissions: permissions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	if addr, err := mail.ParseAddress(u.Email); err != nil || addr.Address != u.Email {
		return ErrInvalidEmail
	}

	if u.Password != "" {
		if len(u.Password) < 12 {
			return ErrPasswordTooShort
		}
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	for _, p := range u.Permissions {
		if !IsDefinedPermission(p) {
			return NewValidationError("permissions", p, ErrUnknownPermission)
		}
	}

	return nil
}
