package store

import (
	"context"
	"database/sql"

	"github.com/clinicsys/clinic-api/internal/domain"
	"github.com/google/uuid"
)

// UserStore defines the interface for operator account persistence.
type UserStore interface {
	// Create saves a new user. The caller hashes the password first.
	// Returns ErrEmailExists if the email is already taken in the tenant.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves the user of the tenant with the given email.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, tenantID *uuid.UUID, email string) (*domain.User, error)

	// Update replaces the stored password hash and permissions of a user.
	// Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, user *domain.User) error

	// WithTx returns a UserStore bound to tx.
	WithTx(tx *sql.Tx) UserStore
}
