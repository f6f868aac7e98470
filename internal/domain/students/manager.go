package students

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clinicsys/clinic-api/internal/domain"
	"github.com/google/uuid"
)

// Repository is the read access the Manager needs to enforce uniqueness.
type Repository interface {
	// FindByEmail returns the active student of the tenant holding email,
	// skipping excludeID when set. It returns nil, nil when there is none.
	FindByEmail(ctx context.Context, tenantID *uuid.UUID, email string, excludeID *uuid.UUID) (*domain.Student, error)
}

// Input carries the editable fields of a student.
type Input struct {
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Email       *string
	PhoneNumber *string
	Address     *string
}

// Manager enforces the cross-record student rules.
type Manager struct {
	repo Repository
	now  func() time.Time
}

// NewManager creates a Manager. A nil clock defaults to time.Now.
func NewManager(repo Repository, clock func() time.Time) (*Manager, error) {
	if repo == nil {
		return nil, domain.NewValidationError("repo", "cannot be nil", errors.New("nil dependency"))
	}
	if clock == nil {
		clock = time.Now
	}
	return &Manager{repo: repo, now: clock}, nil
}

// Create validates input and returns a new, unsaved Student for the tenant.
//
// The age rule is checked first, so an under-age request never reaches the
// repository.
func (m *Manager) Create(ctx context.Context, tenantID *uuid.UUID, in Input) (*domain.Student, error) {
	if err := m.ValidateAge(in.DateOfBirth); err != nil {
		return nil, err
	}
	if err := m.checkEmailUnique(ctx, tenantID, in.Email, nil); err != nil {
		return nil, err
	}

	return domain.NewStudent(
		uuid.New(),
		tenantID,
		in.FirstName,
		in.LastName,
		in.DateOfBirth,
		in.Email,
		in.PhoneNumber,
		in.Address,
		m.now(),
	)
}

// Update validates input against the rules and applies it to student.
// The student's own record is ignored by the uniqueness check.
func (m *Manager) Update(ctx context.Context, student *domain.Student, in Input) error {
	if student == nil {
		return domain.NewValidationError("student", "cannot be nil", nil)
	}
	if err := m.ValidateAge(in.DateOfBirth); err != nil {
		return err
	}
	id := student.ID
	if err := m.checkEmailUnique(ctx, student.TenantID, in.Email, &id); err != nil {
		return err
	}

	return student.Change(in.FirstName, in.LastName, in.DateOfBirth, in.Email, in.PhoneNumber, in.Address)
}

// ValidateAge fails with *domain.AgeRestrictionError when the person born on
// dateOfBirth is younger than domain.MinimumAge today.
func (m *Manager) ValidateAge(dateOfBirth time.Time) error {
	age := domain.CalculateAge(dateOfBirth, m.now())
	if age < domain.MinimumAge {
		return &domain.AgeRestrictionError{MinimumAge: domain.MinimumAge, Age: age}
	}
	return nil
}

func (m *Manager) checkEmailUnique(ctx context.Context, tenantID *uuid.UUID, email *string, excludeID *uuid.UUID) error {
	if email == nil || strings.TrimSpace(*email) == "" {
		return nil
	}

	existing, err := m.repo.FindByEmail(ctx, tenantID, *email, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if existing != nil {
		return &domain.DuplicateEmailError{Email: *email}
	}
	return nil
}
