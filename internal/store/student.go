package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/clinicsys/clinic-api/internal/domain"
	"github.com/google/uuid"
)

// StudentSortKey names a field students can be ordered by.
type StudentSortKey string

// Sortable student fields.
const (
	StudentSortFirstName    StudentSortKey = "firstName"
	StudentSortLastName     StudentSortKey = "lastName"
	StudentSortDateOfBirth  StudentSortKey = "dateOfBirth"
	StudentSortEmail        StudentSortKey = "email"
	StudentSortCreationTime StudentSortKey = "creationTime"
)

// StudentSort is one ordering term.
type StudentSort struct {
	Key  StudentSortKey
	Desc bool
}

// StudentQuery selects a page of active students of one tenant.
type StudentQuery struct {
	TenantID *uuid.UUID
	// Filter matches a case-insensitive substring of the first or last name.
	// Empty means no filter.
	Filter string
	// Sort is applied in order; implementations add the ID as a final
	// tiebreaker so that pages never overlap.
	Sort   []StudentSort
	Offset int
	Limit  int
}

// StudentStore defines the interface for student persistence. Soft-deleted
// rows are invisible to every read.
type StudentStore interface {
	// Create inserts a new student.
	// Returns *domain.DuplicateEmailError if the email is taken in the tenant.
	Create(ctx context.Context, student *domain.Student) error

	// GetByID returns the active student with id in the tenant.
	// Returns ErrStudentNotFound otherwise.
	GetByID(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) (*domain.Student, error)

	// FindByEmail returns the active student of the tenant using email,
	// ignoring excludeID when set. It returns nil, nil when there is none.
	FindByEmail(ctx context.Context, tenantID *uuid.UUID, email string, excludeID *uuid.UUID) (*domain.Student, error)

	// Update persists the editable and audit fields of student. The update
	// only applies when the stored concurrency stamp still equals the
	// student's; the student then receives a fresh stamp.
	// Returns ErrStudentNotFound, ErrConcurrencyConflict or
	// *domain.DuplicateEmailError.
	Update(ctx context.Context, student *domain.Student) error

	// SoftDelete marks the student deleted. The row is kept.
	// Returns ErrStudentNotFound if it is absent or already deleted.
	SoftDelete(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID, deleterID *uuid.UUID, at time.Time) error

	// List returns one page of students matching q and the number of
	// matches before paging.
	List(ctx context.Context, q StudentQuery) ([]*domain.Student, int64, error)

	// WithTx returns a StudentStore bound to tx.
	WithTx(tx *sql.Tx) StudentStore
}
