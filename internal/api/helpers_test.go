package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/clinicsys/clinic-api/internal/api/shared"
	"github.com/clinicsys/clinic-api/internal/domain"
	"github.com/clinicsys/clinic-api/internal/service"
	"github.com/clinicsys/clinic-api/internal/service/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fakeStudentService lets each test supply only the operations it drives.
type fakeStudentService struct {
	getFn    func(ctx context.Context, id uuid.UUID) (*service.StudentDTO, error)
	listFn   func(ctx context.Context, in service.ListStudentsInput) (*service.PagedResult[service.StudentDTO], error)
	createFn func(ctx context.Context, in service.StudentInput) (*service.StudentDTO, error)
	updateFn func(ctx context.Context, id uuid.UUID, in service.StudentInput) (*service.StudentDTO, error)
	deleteFn func(ctx context.Context, id uuid.UUID) error
}

var _ service.StudentService = (*fakeStudentService)(nil)

func (f *fakeStudentService) Get(ctx context.Context, id uuid.UUID) (*service.StudentDTO, error) {
	return f.getFn(ctx, id)
}

func (f *fakeStudentService) GetList(
	ctx context.Context,
	in service.ListStudentsInput,
) (*service.PagedResult[service.StudentDTO], error) {
	return f.listFn(ctx, in)
}

func (f *fakeStudentService) Create(ctx context.Context, in service.StudentInput) (*service.StudentDTO, error) {
	return f.createFn(ctx, in)
}

func (f *fakeStudentService) Update(ctx context.Context, id uuid.UUID, in service.StudentInput) (*service.StudentDTO, error) {
	return f.updateFn(ctx, id, in)
}

func (f *fakeStudentService) Delete(ctx context.Context, id uuid.UUID) error {
	return f.deleteFn(ctx, id)
}

type fakeUserService struct {
	getUserFn      func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	authenticateFn func(ctx context.Context, tenantID *uuid.UUID, email, password string) (*domain.User, error)
}

var _ service.UserService = (*fakeUserService)(nil)

func (f *fakeUserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return f.getUserFn(ctx, id)
}

func (f *fakeUserService) Authenticate(
	ctx context.Context,
	tenantID *uuid.UUID,
	email, password string,
) (*domain.User, error) {
	return f.authenticateFn(ctx, tenantID, email, password)
}

func (f *fakeUserService) EnsureUser(
	context.Context, *uuid.UUID, string, string, []string,
) (*domain.User, bool, error) {
	panic("not used by handlers")
}

func jsonRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withPrincipal(req *http.Request, perms ...string) *http.Request {
	tenant := uuid.New()
	p := auth.Principal{UserID: uuid.New(), TenantID: &tenant, Permissions: perms}
	return req.WithContext(auth.WithPrincipal(req.Context(), p))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}
