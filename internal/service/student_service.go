package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/clinicsys/clinic-api/internal/config"
	"github.com/clinicsys/clinic-api/internal/domain"
	"github.com/clinicsys/clinic-api/internal/domain/students"
	"github.com/clinicsys/clinic-api/internal/platform/logger"
	"github.com/clinicsys/clinic-api/internal/platform/metrics"
	"github.com/clinicsys/clinic-api/internal/service/auth"
	"github.com/clinicsys/clinic-api/internal/store"
	"github.com/google/uuid"
)

// StudentInput carries the editable fields of a student.
type StudentInput struct {
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Email       *string
	PhoneNumber *string
	Address     *string
}

// ListStudentsInput selects a page of students.
type ListStudentsInput struct {
	// Filter matches a case-insensitive substring of the first or last name.
	Filter string
	// Sorting is a comma separated list of "field [asc|desc]" terms.
	Sorting string
	// SkipCount is the number of matches to skip.
	SkipCount int
	// MaxResultCount is the page size. Zero means the configured default.
	MaxResultCount int
}

// StudentService provides the student use cases. Every operation requires an
// auth.Principal on the context and checks its permission before doing
// anything else.
type StudentService interface {
	// Get returns a single active student.
	Get(ctx context.Context, id uuid.UUID) (*StudentDTO, error)

	// GetList returns one page of active students.
	GetList(ctx context.Context, in ListStudentsInput) (*PagedResult[StudentDTO], error)

	// Create registers a new student in the caller's tenant.
	Create(ctx context.Context, in StudentInput) (*StudentDTO, error)

	// Update replaces the editable fields of a student.
	Update(ctx context.Context, id uuid.UUID, in StudentInput) (*StudentDTO, error)

	// Delete soft-deletes a student.
	Delete(ctx context.Context, id uuid.UUID) error
}

// Operation names used for logging and metrics.
const (
	opGetStudent    = "get_student"
	opListStudents  = "list_students"
	opCreateStudent = "create_student"
	opUpdateStudent = "update_student"
	opDeleteStudent = "delete_student"
	opCreateService = "create_service"
)

type studentServiceImpl struct {
	students store.StudentStore
	db       *sql.DB
	paging   config.StudentsConfig
	metrics  *metrics.Metrics
	now      func() time.Time
	logger   *slog.Logger
}

// NewStudentService creates a StudentService.
// It returns an error if any of the required dependencies are nil.
// m may be nil to disable metrics; a nil clock means time.Now.
func NewStudentService(
	studentStore store.StudentStore,
	db *sql.DB,
	paging config.StudentsConfig,
	m *metrics.Metrics,
	clock func() time.Time,
	logger *slog.Logger,
) (StudentService, error) {
	if studentStore == nil {
		return nil, domain.NewValidationError("studentStore", "cannot be nil", domain.ErrValidation)
	}
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		return nil, domain.NewValidationError("logger", "cannot be nil", domain.ErrValidation)
	}
	if paging.DefaultPageSize <= 0 || paging.MaxPageSize < paging.DefaultPageSize {
		return nil, &ServiceError{
			Operation: opCreateService,
			Message:   fmt.Sprintf("invalid page sizes %d/%d", paging.DefaultPageSize, paging.MaxPageSize),
		}
	}
	if clock == nil {
		clock = time.Now
	}

	return &studentServiceImpl{
		students: studentStore,
		db:       db,
		paging:   paging,
		metrics:  m,
		now:      clock,
		logger:   logger.With("component", "student_service"),
	}, nil
}

// Get implements StudentService.
func (s *studentServiceImpl) Get(ctx context.Context, id uuid.UUID) (dto *StudentDTO, err error) {
	defer func() { s.record(opGetStudent, err) }()

	p, err := authorize(ctx, domain.PermissionStudents)
	if err != nil {
		return nil, err
	}

	st, err := s.students.GetByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, s.fail(ctx, opGetStudent, "failed to get student", err, "student_id", id)
	}

	out := ToStudentDTO(st, s.now())
	return &out, nil
}

// GetList implements StudentService.
func (s *studentServiceImpl) GetList(ctx context.Context, in ListStudentsInput) (page *PagedResult[StudentDTO], err error) {
	defer func() { s.record(opListStudents, err) }()

	p, err := authorize(ctx, domain.PermissionStudents)
	if err != nil {
		return nil, err
	}

	q, err := s.buildQuery(p.TenantID, in)
	if err != nil {
		return nil, err
	}

	items, total, err := s.students.List(ctx, q)
	if err != nil {
		return nil, s.fail(ctx, opListStudents, "failed to list students", err)
	}

	return &PagedResult[StudentDTO]{
		TotalCount: total,
		Items:      ToStudentDTOs(items, s.now()),
	}, nil
}

func (s *studentServiceImpl) buildQuery(tenantID *uuid.UUID, in ListStudentsInput) (store.StudentQuery, error) {
	if in.SkipCount < 0 {
		return store.StudentQuery{}, domain.NewValidationError("skipCount", "cannot be negative", nil)
	}
	if in.MaxResultCount < 0 {
		return store.StudentQuery{}, domain.NewValidationError("maxResultCount", "cannot be negative", nil)
	}

	limit := in.MaxResultCount
	if limit == 0 {
		limit = s.paging.DefaultPageSize
	}
	if limit > s.paging.MaxPageSize {
		limit = s.paging.MaxPageSize
	}

	sorts, err := ParseStudentSorting(in.Sorting)
	if err != nil {
		return store.StudentQuery{}, err
	}

	return store.StudentQuery{
		TenantID: tenantID,
		Filter:   strings.TrimSpace(in.Filter),
		Sort:     sorts,
		Offset:   in.SkipCount,
		Limit:    limit,
	}, nil
}

// Create implements StudentService.
func (s *studentServiceImpl) Create(ctx context.Context, in StudentInput) (dto *StudentDTO, err error) {
	defer func() { s.record(opCreateStudent, err) }()

	p, err := authorize(ctx, domain.PermissionStudentsCreate)
	if err != nil {
		return nil, err
	}

	var created *domain.Student
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.students.WithTx(tx)

		manager, err := students.NewManager(txStore, s.now)
		if err != nil {
			return err
		}

		st, err := manager.Create(ctx, p.TenantID, managerInput(in))
		if err != nil {
			return err
		}
		st.CreatorID = &p.UserID

		if err := txStore.Create(ctx, st); err != nil {
			return err
		}
		created = st
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, opCreateStudent, "failed to create student", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("student created",
		"student_id", created.ID,
		"user_id", p.UserID)

	out := ToStudentDTO(created, s.now())
	return &out, nil
}

// Update implements StudentService.
func (s *studentServiceImpl) Update(ctx context.Context, id uuid.UUID, in StudentInput) (dto *StudentDTO, err error) {
	defer func() { s.record(opUpdateStudent, err) }()

	p, err := authorize(ctx, domain.PermissionStudentsEdit)
	if err != nil {
		return nil, err
	}

	var updated *domain.Student
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.students.WithTx(tx)

		st, err := txStore.GetByID(ctx, p.TenantID, id)
		if err != nil {
			return err
		}

		manager, err := students.NewManager(txStore, s.now)
		if err != nil {
			return err
		}
		if err := manager.Update(ctx, st, managerInput(in)); err != nil {
			return err
		}

		now := s.now().UTC()
		st.LastModificationTime = &now
		st.LastModifierID = &p.UserID

		if err := txStore.Update(ctx, st); err != nil {
			return err
		}
		updated = st
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, opUpdateStudent, "failed to update student", err, "student_id", id)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("student updated",
		"student_id", id,
		"user_id", p.UserID)

	out := ToStudentDTO(updated, s.now())
	return &out, nil
}

// Delete implements StudentService.
func (s *studentServiceImpl) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer func() { s.record(opDeleteStudent, err) }()

	p, err := authorize(ctx, domain.PermissionStudentsDelete)
	if err != nil {
		return err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.students.WithTx(tx)

		if _, err := txStore.GetByID(ctx, p.TenantID, id); err != nil {
			return err
		}
		return txStore.SoftDelete(ctx, p.TenantID, id, &p.UserID, s.now().UTC())
	})
	if err != nil {
		return s.fail(ctx, opDeleteStudent, "failed to delete student", err, "student_id", id)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("student deleted",
		"student_id", id,
		"user_id", p.UserID)
	return nil
}

// fail logs err at a level matching its kind and wraps it for the caller.
func (s *studentServiceImpl) fail(ctx context.Context, op, message string, err error, attrs ...any) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	args := append([]any{"operation", op, "error", err}, attrs...)
	if isExpected(err) {
		log.Debug(message, args...)
	} else {
		log.Error(message, args...)
	}
	return NewServiceError(op, message, err)
}

func (s *studentServiceImpl) record(op string, err error) {
	s.metrics.StudentOperation(op, outcome(err))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrForbidden):
		return metrics.OutcomeForbidden
	case errors.Is(err, store.ErrNotFound):
		return metrics.OutcomeNotFound
	case isExpected(err):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}

// authorize returns the caller when it holds permission.
func authorize(ctx context.Context, permission string) (auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return auth.Principal{}, ErrUnauthenticated
	}
	if !p.IsGranted(permission) {
		logger.FromContext(ctx).Debug("permission denied",
			"user_id", p.UserID,
			"permission", permission)
		return auth.Principal{}, &PermissionError{Permission: permission}
	}
	return p, nil
}

func managerInput(in StudentInput) students.Input {
	return students.Input{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		DateOfBirth: in.DateOfBirth,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Address:     in.Address,
	}
}
