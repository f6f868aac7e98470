package mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/clinicsys/clinic-api/internal/domain"
	"github.com/clinicsys/clinic-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStudentStore is a mock of store.StudentStore for use with testify/mock.
type MockStudentStore struct {
	mock.Mock
}

var _ store.StudentStore = (*MockStudentStore)(nil)

// Create is a mock implementation of store.StudentStore.Create
func (m *MockStudentStore) Create(ctx context.Context, student *domain.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

// GetByID is a mock implementation of store.StudentStore.GetByID
func (m *MockStudentStore) GetByID(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) (*domain.Student, error) {
	args := m.Called(ctx, tenantID, id)
	if st, ok := args.Get(0).(*domain.Student); ok {
		return st, args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByEmail is a mock implementation of store.StudentStore.FindByEmail
func (m *MockStudentStore) FindByEmail(
	ctx context.Context,
	tenantID *uuid.UUID,
	email string,
	excludeID *uuid.UUID,
) (*domain.Student, error) {
	args := m.Called(ctx, tenantID, email, excludeID)
	if st, ok := args.Get(0).(*domain.Student); ok {
		return st, args.Error(1)
	}
	return nil, args.Error(1)
}

// Update is a mock implementation of store.StudentStore.Update
func (m *MockStudentStore) Update(ctx context.Context, student *domain.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

// SoftDelete is a mock implementation of store.StudentStore.SoftDelete
func (m *MockStudentStore) SoftDelete(
	ctx context.Context,
	tenantID *uuid.UUID,
	id uuid.UUID,
	deleterID *uuid.UUID,
	at time.Time,
) error {
	args := m.Called(ctx, tenantID, id, deleterID, at)
	return args.Error(0)
}

// List is a mock implementation of store.StudentStore.List
func (m *MockStudentStore) List(ctx context.Context, q store.StudentQuery) ([]*domain.Student, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]*domain.Student)
	return items, args.Get(1).(int64), args.Error(2)
}

// WithTx returns the mock itself so expectations apply inside transactions.
func (m *MockStudentStore) WithTx(tx *sql.Tx) store.StudentStore {
	return m
}
