package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/clinicsys/clinic-api/internal/domain"
	"github.com/clinicsys/clinic-api/internal/service/auth"
	"github.com/clinicsys/clinic-api/internal/store"
	"github.com/google/uuid"
)

// UserService provides operator account operations.
type UserService interface {
	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// Authenticate checks the credentials of a user of the tenant.
	// Returns ErrInvalidCredentials when the user is unknown or the password
	// does not match.
	Authenticate(ctx context.Context, tenantID *uuid.UUID, email, password string) (*domain.User, error)

	// EnsureUser creates the user, or resets the password and grants of an
	// existing one with the same email in the tenant. It reports whether the
	// user was created.
	EnsureUser(
		ctx context.Context,
		tenantID *uuid.UUID,
		email, password string,
		permissions []string,
	) (*domain.User, bool, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore store.UserStore
	db        *sql.DB
	hasher    auth.PasswordHasher
	verifier  auth.PasswordVerifier
	logger    *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	db *sql.DB,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
) (*UserServiceImpl, error) {
	if userStore == nil {
		return nil, domain.NewValidationError("userStore", "cannot be nil", domain.ErrValidation)
	}
	if hasher == nil || verifier == nil {
		return nil, domain.NewValidationError("passwords", "hasher and verifier are required", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		userStore: userStore,
		db:        db,
		hasher:    hasher,
		verifier:  verifier,
		logger:    logger.With("component", "user_service"),
	}, nil
}

var _ UserService = (*UserServiceImpl)(nil)

// GetUser retrieves a user by their ID
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("user not found", "user_id", userID)
		} else {
			s.logger.Error("failed to retrieve user",
				"error", err,
				"user_id", userID)
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// Authenticate implements UserService.
func (s *UserServiceImpl) Authenticate(
	ctx context.Context,
	tenantID *uuid.UUID,
	email, password string,
) (*domain.User, error) {
	user, err := s.userStore.GetByEmail(ctx, tenantID, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("login for unknown user")
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("failed to retrieve user for login", "error", err)
		return nil, NewServiceError("authenticate", "failed to retrieve user", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("login with wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("user authenticated", "user_id", user.ID)
	return user, nil
}

// EnsureUser implements UserService. It runs in a transaction when the
// service has a database handle.
func (s *UserServiceImpl) EnsureUser(
	ctx context.Context,
	tenantID *uuid.UUID,
	email, password string,
	permissions []string,
) (*domain.User, bool, error) {
	var (
		result  *domain.User
		created bool
	)

	run := func(ctx context.Context, users store.UserStore) error {
		existing, err := users.GetByEmail(ctx, tenantID, email)
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			user, err := domain.NewUser(tenantID, email, password, permissions)
			if err != nil {
				return err
			}
			if err := s.hashPassword(user); err != nil {
				return err
			}
			if err := users.Create(ctx, user); err != nil {
				return err
			}
			result, created = user, true
			return nil
		case err != nil:
			return err
		}

		existing.Password = password
		existing.Permissions = permissions
		if err := existing.Validate(); err != nil {
			return err
		}
		if err := s.hashPassword(existing); err != nil {
			return err
		}
		existing.UpdatedAt = time.Now().UTC()
		if err := users.Update(ctx, existing); err != nil {
			return err
		}
		result = existing
		return nil
	}

	var err error
	if s.db != nil {
		err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
			return run(ctx, s.userStore.WithTx(tx))
		})
	} else {
		err = run(ctx, s.userStore)
	}
	if err != nil {
		s.logger.Error("failed to ensure user", "error", err)
		return nil, false, fmt.Errorf("failed to ensure user: %w", err)
	}

	s.logger.Info("user ensured",
		"user_id", result.ID,
		"created", created,
		"permissions", len(result.Permissions))
	return result, created, nil
}

// hashPassword replaces the plaintext password of u with its hash.
func (s *UserServiceImpl) hashPassword(u *domain.User) error {
	hashed, err := s.hasher.Hash(u.Password)
	if err != nil {
		return err
	}
	u.HashedPassword = hashed
	u.Password = ""
	return nil
}
