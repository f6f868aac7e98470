package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/clinicsys/clinic-api/internal/domain"
	"github.com/clinicsys/clinic-api/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var studentColumnNames = []string{
	"id", "tenant_id", "first_name", "last_name", "date_of_birth", "email", "phone_number", "address",
	"creation_time", "creator_id", "last_modification_time", "last_modifier_id",
	"is_deleted", "deleter_id", "deletion_time", "concurrency_stamp",
}

func strPtr(s string) *string { return &s }

func newMockStudentStore(t *testing.T) (*PostgresStudentStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresStudentStore(db, nil), mock
}

func newTestStudent(t *testing.T, tenantID *uuid.UUID, email *string) *domain.Student {
	t.Helper()
	st, err := domain.NewStudent(uuid.New(), tenantID, "Ada", "Lovelace",
		time.Date(2000, 6, 15, 0, 0, 0, 0, time.UTC), email, nil, nil,
		time.Date(2026, 1, 27, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return st
}

func addStudentRow(rows *sqlmock.Rows, st *domain.Student) *sqlmock.Rows {
	var tenant, email any
	if st.TenantID != nil {
		tenant = st.TenantID.String()
	}
	if st.Email() != nil {
		email = *st.Email()
	}
	return rows.AddRow(
		st.ID.String(), tenant, st.FirstName(), st.LastName(), st.DateOfBirth(), email, nil, nil,
		st.CreationTime, nil, nil, nil,
		st.IsDeleted, nil, nil, st.ConcurrencyStamp,
	)
}

func TestNewPostgresStudentStore_NilDBPanics(t *testing.T) {
	assert.Panics(t, func() { NewPostgresStudentStore(nil, nil) })
}

func TestPostgresStudentStore_Create(t *testing.T) {
	tenant := uuid.New()

	t.Run("inserts row", func(t *testing.T) {
		s, mock := newMockStudentStore(t)
		st := newTestStudent(t, &tenant, strPtr("ada@example.com"))

		mock.ExpectExec("INSERT INTO students").
			WithArgs(st.ID, tenant, "Ada", "Lovelace", st.DateOfBirth(), "ada@example.com", nil, nil,
				st.CreationTime, nil, nil, nil, false, nil, nil, st.ConcurrencyStamp).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(context.Background(), st))
	})

	t.Run("email index violation becomes duplicate email error", func(t *testing.T) {
		s, mock := newMockStudentStore(t)
		st := newTestStudent(t, &tenant, strPtr("ada@example.com"))

		mock.ExpectExec("INSERT INTO students").
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: studentEmailIndex})

		err := s.Create(context.Background(), st)
		var dup *domain.DuplicateEmailError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "ada@example.com", dup.Email)
	})

	t.Run("other unique violation maps to duplicate", func(t *testing.T) {
		s, mock := newMockStudentStore(t)
		st := newTestStudent(t, nil, nil)

		mock.ExpectExec("INSERT INTO students").
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "students_pkey"})

		err := s.Create(context.Background(), st)
		assert.ErrorIs(t, err, store.ErrDuplicate)
		var dup *domain.DuplicateEmailError
		assert.False(t, errors.As(err, &dup))
	})
}

func TestPostgresStudentStore_GetByID(t *testing.T) {
	tenant := uuid.New()

	t.Run("found", func(t *testing.T) {
		s, mock := newMockStudentStore(t)
		st := newTestStudent(t, &tenant, strPtr("ada@example.com"))

		mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND tenant_id IS NOT DISTINCT FROM $2 AND NOT is_deleted")).
			WithArgs(st.ID, tenant).
			WillReturnRows(addStudentRow(sqlmock.NewRows(studentColumnNames), st))

		got, err := s.GetByID(context.Background(), &tenant, st.ID)
		require.NoError(t, err)
		assert.Equal(t, st.ID, got.ID)
		assert.Equal(t, &tenant, got.TenantID)
		assert.Equal(t, "Ada", got.FirstName())
		assert.Equal(t, "ada@example.com", *got.Email())
		assert.Nil(t, got.PhoneNumber())
		assert.Nil(t, got.CreatorID)
		assert.Equal(t, st.ConcurrencyStamp, got.ConcurrencyStamp)
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newMockStudentStore(t)
		id := uuid.New()

		mock.ExpectQuery("FROM students").
			WithArgs(id, nil).
			WillReturnRows(sqlmock.NewRows(studentColumnNames))

		_, err := s.GetByID(context.Background(), nil, id)
		assert.ErrorIs(t, err, store.ErrStudentNotFound)
	})

	t.Run("database error", func(t *testing.T) {
		s, mock := newMockStudentStore(t)

		mock.ExpectQuery("FROM students").WillReturnError(errors.New("connection reset"))

		_, err := s.GetByID(context.Background(), nil, uuid.New())
		require.Error(t, err)
		assert.False(t, store.IsNotFoundError(err))
	})
}

func TestPostgresStudentStore_FindByEmail(t *testing.T) {
	tenant := uuid.New()

	t.Run("none", func(t *testing.T) {
		s, mock := newMockStudentStore(t)

		mock.ExpectQuery(regexp.QuoteMeta("AND ($3::uuid IS NULL OR id <> $3::uuid)")).
			WithArgs(tenant, "x@example.com", nil).
			WillReturnRows(sqlmock.NewRows(studentColumnNames))

		got, err := s.FindByEmail(context.Background(), &tenant, "x@example.com", nil)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("match excluding self", func(t *testing.T) {
		s, mock := newMockStudentStore(t)
		other := newTestStudent(t, &tenant, strPtr("x@example.com"))
		self := uuid.New()

		mock.ExpectQuery("FROM students").
			WithArgs(tenant, "x@example.com", self).
			WillReturnRows(addStudentRow(sqlmock.NewRows(studentColumnNames), other))

		got, err := s.FindByEmail(context.Background(), &tenant, "x@example.com", &self)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, other.ID, got.ID)
	})
}

func TestPostgresStudentStore_Update(t *testing.T) {
	tenant := uuid.New()
	modifier := uuid.New()

	prepare := func(t *testing.T) *domain.Student {
		st := newTestStudent(t, &tenant, strPtr("ada@example.com"))
		now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		st.LastModificationTime = &now
		st.LastModifierID = &modifier
		return st
	}

	t.Run("success rotates stamp", func(t *testing.T) {
		s, mock := newMockStudentStore(t)
		st := prepare(t)
		oldStamp := st.ConcurrencyStamp

		mock.ExpectExec("UPDATE students").
			WithArgs("Ada", "Lovelace", st.DateOfBirth(), "ada@example.com", nil, nil,
				*st.LastModificationTime, modifier, sqlmock.AnyArg(), st.ID, tenant, oldStamp).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Update(context.Background(), st))
		assert.NotEqual(t, oldStamp, st.ConcurrencyStamp)
		assert.Len(t, st.ConcurrencyStamp, 32)
	})

	t.Run("stale stamp", func(t *testing.T) {
		s, mock := newMockStudentStore(t)
		st := prepare(t)
		oldStamp := st.ConcurrencyStamp

		mock.ExpectExec("UPDATE students").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(st.ID, tenant).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err := s.Update(context.Background(), st)
		assert.ErrorIs(t, err, store.ErrConcurrencyConflict)
		assert.Equal(t, oldStamp, st.ConcurrencyStamp)
	})

	t.Run("missing row", func(t *testing.T) {
		s, mock := newMockStudentStore(t)
		st := prepare(t)

		mock.ExpectExec("UPDATE students").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		assert.ErrorIs(t, s.Update(context.Background(), st), store.ErrStudentNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		s, mock := newMockStudentStore(t)
		st := prepare(t)

		mock.ExpectExec("UPDATE students").
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: studentEmailIndex})

		var dup *domain.DuplicateEmailError
		assert.ErrorAs(t, s.Update(context.Background(), st), &dup)
	})
}

func TestPostgresStudentStore_SoftDelete(t *testing.T) {
	tenant := uuid.New()
	deleter := uuid.New()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id := uuid.New()

	t.Run("marks deleted", func(t *testing.T) {
		s, mock := newMockStudentStore(t)

		mock.ExpectExec(regexp.QuoteMeta("SET is_deleted = TRUE, deleter_id = $1, deletion_time = $2")).
			WithArgs(deleter, at, sqlmock.AnyArg(), id, tenant).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.SoftDelete(context.Background(), &tenant, id, &deleter, at))
	})

	t.Run("already deleted or absent", func(t *testing.T) {
		s, mock := newMockStudentStore(t)

		mock.ExpectExec("UPDATE students").WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.SoftDelete(context.Background(), &tenant, id, &deleter, at), store.ErrStudentNotFound)
	})
}

func TestPostgresStudentStore_List(t *testing.T) {
	tenant := uuid.New()

	t.Run("filter sort and page", func(t *testing.T) {
		s, mock := newMockStudentStore(t)
		a := newTestStudent(t, &tenant, nil)
		b := newTestStudent(t, &tenant, nil)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE tenant_id IS NOT DISTINCT FROM $1 AND NOT is_deleted AND (strpos(lower(first_name), lower($2::text)) > 0")).
			WithArgs(tenant, "lov").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY date_of_birth DESC, id ASC LIMIT $3 OFFSET $4")).
			WithArgs(tenant, "lov", 2, 4).
			WillReturnRows(addStudentRow(addStudentRow(sqlmock.NewRows(studentColumnNames), a), b))

		got, total, err := s.List(context.Background(), store.StudentQuery{
			TenantID: &tenant,
			Filter:   "lov",
			Sort:     []store.StudentSort{{Key: store.StudentSortDateOfBirth, Desc: true}},
			Offset:   4,
			Limit:    2,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(7), total)
		require.Len(t, got, 2)
		assert.Equal(t, a.ID, got[0].ID)
		assert.Equal(t, b.ID, got[1].ID)
	})

	t.Run("defaults without filter", func(t *testing.T) {
		s, mock := newMockStudentStore(t)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE tenant_id IS NOT DISTINCT FROM $1 AND NOT is_deleted")).
			WithArgs(nil).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY last_name ASC, first_name ASC, id ASC LIMIT $2")).
			WithArgs(nil, 10).
			WillReturnRows(sqlmock.NewRows(studentColumnNames))

		got, total, err := s.List(context.Background(), store.StudentQuery{Limit: 10})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("count failure", func(t *testing.T) {
		s, mock := newMockStudentStore(t)

		mock.ExpectQuery("SELECT COUNT").WillReturnError(sql.ErrConnDone)

		_, _, err := s.List(context.Background(), store.StudentQuery{Limit: 10})
		assert.ErrorIs(t, err, sql.ErrConnDone)
	})

	t.Run("unknown sort key", func(t *testing.T) {
		s, _ := newMockStudentStore(t)

		_, _, err := s.List(context.Background(), store.StudentQuery{
			Sort: []store.StudentSort{{Key: "address"}},
		})
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestStudentOrderBy(t *testing.T) {
	tests := []struct {
		name string
		sort []store.StudentSort
		want string
	}{
		{"default", nil, "last_name ASC, first_name ASC, id ASC"},
		{"single desc", []store.StudentSort{{Key: store.StudentSortEmail, Desc: true}}, "email DESC, id ASC"},
		{
			"multiple",
			[]store.StudentSort{{Key: store.StudentSortFirstName}, {Key: store.StudentSortCreationTime, Desc: true}},
			"first_name ASC, creation_time DESC, id ASC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := studentOrderBy(tt.sort)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
