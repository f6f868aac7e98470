package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/clinicsys/clinic-api/internal/domain"
	"github.com/clinicsys/clinic-api/internal/platform/logger"
	"github.com/clinicsys/clinic-api/internal/store"
	"github.com/google/uuid"
)

const userColumns = `id, tenant_id, email, password_hash, permissions, created_at, updated_at`

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a user store over db. If logger is nil,
// slog.Default() is used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, logger: s.logger}
}

// Create implements store.UserStore.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if user.HashedPassword == "" {
		return fmt.Errorf("%w: password must be hashed before storing", store.ErrInvalidEntity)
	}

	perms, err := encodePermissions(user.Permissions)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)`
	_, err = s.db.ExecContext(ctx, query,
		user.ID,
		nullUUID(user.TenantID),
		user.Email,
		user.HashedPassword,
		perms,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err, userEmailIndex) {
			log.Warn("attempt to create user with existing email", slog.String("user_id", user.ID.String()))
			return store.ErrEmailExists
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return MapError(err)
	}

	user.Password = ""
	log.Info("user created", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.getOne(ctx, "id", id.String(), query, id)
}

// GetByEmail implements store.UserStore.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, tenantID *uuid.UUID, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE tenant_id IS NOT DISTINCT FROM $1 AND email = $2`
	return s.getOne(ctx, "email", "", query, nullUUID(tenantID), email)
}

// Update implements store.UserStore.
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	perms, err := encodePermissions(user.Permissions)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, permissions = $2::jsonb, updated_at = $3 WHERE id = $4`,
		user.HashedPassword,
		perms,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		log.Error("failed to update user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	log.Info("user updated", slog.String("user_id", user.ID.String()))
	return nil
}

func (s *PostgresUserStore) getOne(ctx context.Context, by, key, query string, args ...any) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		user     domain.User
		tenantID uuid.NullUUID
		perms    []byte
	)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&tenantID,
		&user.Email,
		&user.HashedPassword,
		&perms,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found", slog.String("by", by), slog.String("key", key))
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user", slog.String("by", by), slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	user.TenantID = uuidPtr(tenantID)
	if err := json.Unmarshal(perms, &user.Permissions); err != nil {
		return nil, fmt.Errorf("failed to decode permissions of user %s: %w", user.ID, err)
	}
	return &user, nil
}

func encodePermissions(perms []string) (string, error) {
	if perms == nil {
		perms = []string{}
	}
	b, err := json.Marshal(perms)
	if err != nil {
		return "", fmt.Errorf("failed to encode permissions: %w", err)
	}
	return string(b), nil
}
