package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clinicsys/clinic-api/internal/domain"
	"github.com/clinicsys/clinic-api/internal/service"
	"github.com/clinicsys/clinic-api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func studentRouter(svc service.StudentService) http.Handler {
	h := NewStudentHandler(svc)
	r := chi.NewRouter()
	r.Route("/api/students", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func sampleDTO() *service.StudentDTO {
	email := "ann@example.com"
	return &service.StudentDTO{
		ID:           uuid.New(),
		FirstName:    "Ann",
		LastName:     "Smith",
		DateOfBirth:  "2000-05-01",
		Age:          26,
		Email:        &email,
		CreationTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestStudentHandler_Create(t *testing.T) {
	t.Parallel()

	t.Run("created", func(t *testing.T) {
		t.Parallel()
		dto := sampleDTO()
		var got service.StudentInput
		svc := &fakeStudentService{createFn: func(_ context.Context, in service.StudentInput) (*service.StudentDTO, error) {
			got = in
			return dto, nil
		}}

		rr := httptest.NewRecorder()
		studentRouter(svc).ServeHTTP(rr, jsonRequest(t, http.MethodPost, "/api/students",
			`{"firstName":"Ann","lastName":"Smith","dateOfBirth":"2000-05-01","email":"ann@example.com"}`))

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		assert.Equal(t, "/api/students/"+dto.ID.String(), rr.Header().Get("Location"))
		assert.Equal(t, "Ann", got.FirstName)
		assert.Equal(t, time.Date(2000, 5, 1, 0, 0, 0, 0, time.UTC), got.DateOfBirth)
		require.NotNil(t, got.Email)
		assert.Nil(t, got.PhoneNumber)

		var body service.StudentDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, dto.ID, body.ID)
		assert.Equal(t, 26, body.Age)
	})

	t.Run("boundary validation", func(t *testing.T) {
		t.Parallel()
		svc := &fakeStudentService{createFn: func(context.Context, service.StudentInput) (*service.StudentDTO, error) {
			t.Fatal("service must not be called")
			return nil, nil
		}}

		cases := []struct{ body, want string }{
			{`{"lastName":"Smith","dateOfBirth":"2000-05-01"}`, "Invalid firstName: required field"},
			{`{"firstName":"Ann","lastName":"Smith","dateOfBirth":"01/05/2000"}`, "Invalid dateOfBirth: expected format YYYY-MM-DD"},
			{`{"firstName":"Ann","lastName":"Smith","dateOfBirth":"2000-05-01","email":"nope"}`, "Invalid email: invalid email format"},
			{`{"firstName":"Ann","lastName":"Smith","dateOfBirth":"2000-05-01","tenantId":"x"}`, "Invalid request format"},
			{`{"firstName":"Ann","lastName":"Smith","dateOfBirth":"2000-05-01"} {"again":true}`, "Invalid request format"},
		}
		for _, tc := range cases {
			rr := httptest.NewRecorder()
			studentRouter(svc).ServeHTTP(rr, jsonRequest(t, http.MethodPost, "/api/students", tc.body))
			assert.Equal(t, http.StatusBadRequest, rr.Code, tc.body)
			assert.Equal(t, tc.want, decodeError(t, rr).Error, tc.body)
		}
	})

	t.Run("under age", func(t *testing.T) {
		t.Parallel()
		svc := &fakeStudentService{createFn: func(context.Context, service.StudentInput) (*service.StudentDTO, error) {
			return nil, &domain.AgeRestrictionError{MinimumAge: 18, Age: 10}
		}}

		rr := httptest.NewRecorder()
		studentRouter(svc).ServeHTTP(rr, jsonRequest(t, http.MethodPost, "/api/students",
			`{"firstName":"Tim","lastName":"Young","dateOfBirth":"2016-01-01"}`))

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Equal(t, domain.CodeStudentUnderAge, decodeError(t, rr).Code)
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		svc := &fakeStudentService{createFn: func(context.Context, service.StudentInput) (*service.StudentDTO, error) {
			return nil, &domain.DuplicateEmailError{Email: "ann@example.com"}
		}}

		rr := httptest.NewRecorder()
		studentRouter(svc).ServeHTTP(rr, jsonRequest(t, http.MethodPost, "/api/students",
			`{"firstName":"Ann","lastName":"Smith","dateOfBirth":"2000-05-01","email":"ann@example.com"}`))

		assert.Equal(t, http.StatusConflict, rr.Code)
		resp := decodeError(t, rr)
		assert.Equal(t, domain.CodeStudentDuplicateEmail, resp.Code)
		assert.Equal(t, "ann@example.com", resp.Details["Email"])
	})

	t.Run("forbidden", func(t *testing.T) {
		t.Parallel()
		svc := &fakeStudentService{createFn: func(context.Context, service.StudentInput) (*service.StudentDTO, error) {
			return nil, &service.PermissionError{Permission: domain.PermissionStudentsCreate}
		}}

		rr := httptest.NewRecorder()
		studentRouter(svc).ServeHTTP(rr, jsonRequest(t, http.MethodPost, "/api/students",
			`{"firstName":"Ann","lastName":"Smith","dateOfBirth":"2000-05-01"}`))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestStudentHandler_List(t *testing.T) {
	t.Parallel()

	t.Run("passes query parameters", func(t *testing.T) {
		t.Parallel()
		var got service.ListStudentsInput
		svc := &fakeStudentService{listFn: func(
			_ context.Context,
			in service.ListStudentsInput,
		) (*service.PagedResult[service.StudentDTO], error) {
			got = in
			return &service.PagedResult[service.StudentDTO]{TotalCount: 7, Items: []service.StudentDTO{*sampleDTO()}}, nil
		}}

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet,
			"/api/students?filter=smi&sorting=firstName%20desc&skipCount=5&maxResultCount=2", nil)
		studentRouter(svc).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, service.ListStudentsInput{
			Filter: "smi", Sorting: "firstName desc", SkipCount: 5, MaxResultCount: 2,
		}, got)

		var body service.PagedResult[service.StudentDTO]
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.EqualValues(t, 7, body.TotalCount)
		assert.Len(t, body.Items, 1)
	})

	t.Run("non numeric paging", func(t *testing.T) {
		t.Parallel()
		rr := httptest.NewRecorder()
		studentRouter(&fakeStudentService{}).ServeHTTP(rr,
			httptest.NewRequest(http.MethodGet, "/api/students?skipCount=abc", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid skipCount: must be an integer", decodeError(t, rr).Error)
	})

	t.Run("unknown sort field", func(t *testing.T) {
		t.Parallel()
		svc := &fakeStudentService{listFn: func(
			context.Context,
			service.ListStudentsInput,
		) (*service.PagedResult[service.StudentDTO], error) {
			return nil, domain.NewValidationError("sorting", "unknown field \"password\"", nil)
		}}

		rr := httptest.NewRecorder()
		studentRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/students?sorting=password", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestStudentHandler_GetUpdateDelete(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	t.Run("get not found", func(t *testing.T) {
		t.Parallel()
		svc := &fakeStudentService{getFn: func(_ context.Context, got uuid.UUID) (*service.StudentDTO, error) {
			assert.Equal(t, id, got)
			return nil, store.ErrStudentNotFound
		}}

		rr := httptest.NewRecorder()
		studentRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/students/"+id.String(), nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Student not found", decodeError(t, rr).Error)
	})

	t.Run("get invalid id", func(t *testing.T) {
		t.Parallel()
		rr := httptest.NewRecorder()
		studentRouter(&fakeStudentService{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/students/42", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("update", func(t *testing.T) {
		t.Parallel()
		dto := sampleDTO()
		svc := &fakeStudentService{updateFn: func(_ context.Context, got uuid.UUID, in service.StudentInput) (*service.StudentDTO, error) {
			assert.Equal(t, id, got)
			assert.Equal(t, "Anne", in.FirstName)
			return dto, nil
		}}

		rr := httptest.NewRecorder()
		studentRouter(svc).ServeHTTP(rr, jsonRequest(t, http.MethodPut, "/api/students/"+id.String(),
			`{"firstName":"Anne","lastName":"Smith","dateOfBirth":"2000-05-01"}`))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("update conflict", func(t *testing.T) {
		t.Parallel()
		svc := &fakeStudentService{updateFn: func(context.Context, uuid.UUID, service.StudentInput) (*service.StudentDTO, error) {
			return nil, store.ErrConcurrencyConflict
		}}

		rr := httptest.NewRecorder()
		studentRouter(svc).ServeHTTP(rr, jsonRequest(t, http.MethodPut, "/api/students/"+id.String(),
			`{"firstName":"Anne","lastName":"Smith","dateOfBirth":"2000-05-01"}`))
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()
		var deleted uuid.UUID
		svc := &fakeStudentService{deleteFn: func(_ context.Context, got uuid.UUID) error {
			deleted = got
			return nil
		}}

		rr := httptest.NewRecorder()
		studentRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/students/"+id.String(), nil))
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Body.String())
		assert.Equal(t, id, deleted)
	})

	t.Run("delete unauthenticated", func(t *testing.T) {
		t.Parallel()
		svc := &fakeStudentService{deleteFn: func(context.Context, uuid.UUID) error {
			return service.ErrUnauthenticated
		}}

		rr := httptest.NewRecorder()
		studentRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/students/"+id.String(), nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
