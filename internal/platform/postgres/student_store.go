package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/clinicsys/clinic-api/internal/domain"
	"github.com/clinicsys/clinic-api/internal/platform/logger"
	"github.com/clinicsys/clinic-api/internal/store"
	"github.com/google/uuid"
)

const studentColumns = `id, tenant_id, first_name, last_name, date_of_birth, email, phone_number, address,
	creation_time, creator_id, last_modification_time, last_modifier_id,
	is_deleted, deleter_id, deletion_time, concurrency_stamp`

// studentSortColumns whitelists the columns a list can be ordered by.
var studentSortColumns = map[store.StudentSortKey]string{
	store.StudentSortFirstName:    "first_name",
	store.StudentSortLastName:     "last_name",
	store.StudentSortDateOfBirth:  "date_of_birth",
	store.StudentSortEmail:        "email",
	store.StudentSortCreationTime: "creation_time",
}

// PostgresStudentStore implements store.StudentStore on PostgreSQL.
type PostgresStudentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStudentStore creates a student store over db, which may be a
// pool or a transaction. If logger is nil, slog.Default() is used.
func NewPostgresStudentStore(db store.DBTX, logger *slog.Logger) *PostgresStudentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStudentStore{
		db:     db,
		logger: logger.With(slog.String("component", "student_store")),
	}
}

var _ store.StudentStore = (*PostgresStudentStore)(nil)

// WithTx implements store.StudentStore.
func (s *PostgresStudentStore) WithTx(tx *sql.Tx) store.StudentStore {
	return &PostgresStudentStore{db: tx, logger: s.logger}
}

// Create implements store.StudentStore.
func (s *PostgresStudentStore) Create(ctx context.Context, st *domain.Student) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `INSERT INTO students (` + studentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := s.db.ExecContext(ctx, query,
		st.ID,
		nullUUID(st.TenantID),
		st.FirstName(),
		st.LastName(),
		st.DateOfBirth(),
		nullString(st.Email()),
		nullString(st.PhoneNumber()),
		nullString(st.Address()),
		st.CreationTime,
		nullUUID(st.CreatorID),
		nullTime(st.LastModificationTime),
		nullUUID(st.LastModifierID),
		st.IsDeleted,
		nullUUID(st.DeleterID),
		nullTime(st.DeletionTime),
		st.ConcurrencyStamp,
	)
	if err != nil {
		if IsUniqueViolation(err, studentEmailIndex) {
			log.Warn("duplicate student email on create", slog.String("student_id", st.ID.String()))
			return duplicateEmail(st)
		}
		log.Error("failed to create student",
			slog.String("error", err.Error()),
			slog.String("student_id", st.ID.String()))
		return MapError(err)
	}

	log.Info("student created", slog.String("student_id", st.ID.String()))
	return nil
}

// GetByID implements store.StudentStore.
func (s *PostgresStudentStore) GetByID(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) (*domain.Student, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + studentColumns + `
		FROM students
		WHERE id = $1 AND tenant_id IS NOT DISTINCT FROM $2 AND NOT is_deleted`

	st, err := scanStudent(s.db.QueryRowContext(ctx, query, id, nullUUID(tenantID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("student not found", slog.String("student_id", id.String()))
			return nil, store.ErrStudentNotFound
		}
		log.Error("failed to get student",
			slog.String("error", err.Error()),
			slog.String("student_id", id.String()))
		return nil, MapError(err)
	}
	return st, nil
}

// FindByEmail implements store.StudentStore.
func (s *PostgresStudentStore) FindByEmail(
	ctx context.Context,
	tenantID *uuid.UUID,
	email string,
	excludeID *uuid.UUID,
) (*domain.Student, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + studentColumns + `
		FROM students
		WHERE tenant_id IS NOT DISTINCT FROM $1
		  AND email = $2
		  AND NOT is_deleted
		  AND ($3::uuid IS NULL OR id <> $3::uuid)
		LIMIT 1`

	st, err := scanStudent(s.db.QueryRowContext(ctx, query, nullUUID(tenantID), email, nullUUID(excludeID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		log.Error("failed to look up student by email", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return st, nil
}

// Update implements store.StudentStore.
func (s *PostgresStudentStore) Update(ctx context.Context, st *domain.Student) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	stamp := domain.NewConcurrencyStamp()
	query := `UPDATE students
		SET first_name = $1, last_name = $2, date_of_birth = $3,
		    email = $4, phone_number = $5, address = $6,
		    last_modification_time = $7, last_modifier_id = $8, concurrency_stamp = $9
		WHERE id = $10 AND tenant_id IS NOT DISTINCT FROM $11 AND NOT is_deleted
		  AND concurrency_stamp = $12`

	result, err := s.db.ExecContext(ctx, query,
		st.FirstName(),
		st.LastName(),
		st.DateOfBirth(),
		nullString(st.Email()),
		nullString(st.PhoneNumber()),
		nullString(st.Address()),
		nullTime(st.LastModificationTime),
		nullUUID(st.LastModifierID),
		stamp,
		st.ID,
		nullUUID(st.TenantID),
		st.ConcurrencyStamp,
	)
	if err != nil {
		if IsUniqueViolation(err, studentEmailIndex) {
			log.Warn("duplicate student email on update", slog.String("student_id", st.ID.String()))
			return duplicateEmail(st)
		}
		log.Error("failed to update student",
			slog.String("error", err.Error()),
			slog.String("student_id", st.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrStudentNotFound); err != nil {
		if !errors.Is(err, store.ErrStudentNotFound) {
			return err
		}
		exists, existsErr := s.exists(ctx, st.TenantID, st.ID)
		if existsErr != nil {
			return existsErr
		}
		if exists {
			log.Warn("stale concurrency stamp on update", slog.String("student_id", st.ID.String()))
			return store.ErrConcurrencyConflict
		}
		return store.ErrStudentNotFound
	}

	st.ConcurrencyStamp = stamp
	log.Info("student updated", slog.String("student_id", st.ID.String()))
	return nil
}

// SoftDelete implements store.StudentStore.
func (s *PostgresStudentStore) SoftDelete(
	ctx context.Context,
	tenantID *uuid.UUID,
	id uuid.UUID,
	deleterID *uuid.UUID,
	at time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `UPDATE students
		SET is_deleted = TRUE, deleter_id = $1, deletion_time = $2, concurrency_stamp = $3
		WHERE id = $4 AND tenant_id IS NOT DISTINCT FROM $5 AND NOT is_deleted`

	result, err := s.db.ExecContext(ctx, query,
		nullUUID(deleterID),
		at,
		domain.NewConcurrencyStamp(),
		id,
		nullUUID(tenantID),
	)
	if err != nil {
		log.Error("failed to delete student",
			slog.String("error", err.Error()),
			slog.String("student_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrStudentNotFound); err != nil {
		return err
	}

	log.Info("student deleted", slog.String("student_id", id.String()))
	return nil
}

// List implements store.StudentStore.
func (s *PostgresStudentStore) List(ctx context.Context, q store.StudentQuery) ([]*domain.Student, int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	orderBy, err := studentOrderBy(q.Sort)
	if err != nil {
		return nil, 0, err
	}

	where := `tenant_id IS NOT DISTINCT FROM $1 AND NOT is_deleted`
	args := []any{nullUUID(q.TenantID)}
	if q.Filter != "" {
		args = append(args, q.Filter)
		where += ` AND (strpos(lower(first_name), lower($2::text)) > 0 OR strpos(lower(last_name), lower($2::text)) > 0)`
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM students WHERE `+where, args...).Scan(&total); err != nil {
		log.Error("failed to count students", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	query := `SELECT ` + studentColumns + ` FROM students WHERE ` + where + ` ORDER BY ` + orderBy
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list students", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	students := make([]*domain.Student, 0)
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			log.Error("failed to scan student row", slog.String("error", err.Error()))
			return nil, 0, err
		}
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating student rows", slog.String("error", err.Error()))
		return nil, 0, err
	}

	log.Debug("students listed",
		slog.Int("count", len(students)),
		slog.Int64("total", total))
	return students, total, nil
}

func (s *PostgresStudentStore) exists(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM students WHERE id = $1 AND tenant_id IS NOT DISTINCT FROM $2 AND NOT is_deleted)`,
		id, nullUUID(tenantID),
	).Scan(&exists)
	if err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// studentOrderBy renders sort terms as an ORDER BY list ending in id.
// An empty sort orders by last name, then first name.
func studentOrderBy(sort []store.StudentSort) (string, error) {
	if len(sort) == 0 {
		sort = []store.StudentSort{{Key: store.StudentSortLastName}, {Key: store.StudentSortFirstName}}
	}

	terms := make([]string, 0, len(sort)+1)
	for _, term := range sort {
		col, ok := studentSortColumns[term.Key]
		if !ok {
			return "", fmt.Errorf("%w: unsupported sort key %q", store.ErrInvalidEntity, term.Key)
		}
		dir := "ASC"
		if term.Desc {
			dir = "DESC"
		}
		terms = append(terms, col+" "+dir)
	}
	terms = append(terms, "id ASC")
	return strings.Join(terms, ", "), nil
}

func scanStudent(row rowScanner) (*domain.Student, error) {
	var (
		base                               domain.Student
		tenantID, creatorID, modifierID    uuid.NullUUID
		deleterID                          uuid.NullUUID
		firstName, lastName                string
		dateOfBirth                        time.Time
		email, phone, address              sql.NullString
		lastModificationTime, deletionTime sql.NullTime
	)

	err := row.Scan(
		&base.ID,
		&tenantID,
		&firstName,
		&lastName,
		&dateOfBirth,
		&email,
		&phone,
		&address,
		&base.CreationTime,
		&creatorID,
		&lastModificationTime,
		&modifierID,
		&base.IsDeleted,
		&deleterID,
		&deletionTime,
		&base.ConcurrencyStamp,
	)
	if err != nil {
		return nil, err
	}

	base.TenantID = uuidPtr(tenantID)
	base.CreatorID = uuidPtr(creatorID)
	base.LastModificationTime = timePtr(lastModificationTime)
	base.LastModifierID = uuidPtr(modifierID)
	base.DeleterID = uuidPtr(deleterID)
	base.DeletionTime = timePtr(deletionTime)

	return domain.RestoreStudent(base, firstName, lastName, dateOfBirth,
		stringPtr(email), stringPtr(phone), stringPtr(address)), nil
}

func duplicateEmail(st *domain.Student) error {
	var email string
	if e := st.Email(); e != nil {
		email = *e
	}
	return &domain.DuplicateEmailError{Email: email}
}
