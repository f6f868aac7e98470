package api

import (
	"net/http"
	"time"

	"github.com/clinicsys/clinic-api/internal/api/shared"
	"github.com/clinicsys/clinic-api/internal/domain"
	"github.com/clinicsys/clinic-api/internal/service"
)

// StudentHandler exposes the student service over HTTP.
type StudentHandler struct {
	students service.StudentService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(students service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List handles GET /api/students.
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skipCount")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	take, err := queryInt(r, "maxResultCount")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	q := r.URL.Query()
	page, err := h.students.GetList(r.Context(), service.ListStudentsInput{
		Filter:         q.Get("filter"),
		Sorting:        q.Get("sorting"),
		SkipCount:      skip,
		MaxResultCount: take,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list students")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, page)
}

// Get handles GET /api/students/{id}.
func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	dto, err := h.students.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get student")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, dto)
}

// Create handles POST /api/students.
func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeStudentRequest(w, r)
	if !ok {
		return
	}

	dto, err := h.students.Create(r.Context(), in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create student")
		return
	}
	w.Header().Set("Location", "/api/students/"+dto.ID.String())
	shared.RespondWithJSON(w, r, http.StatusCreated, dto)
}

// Update handles PUT /api/students/{id}.
func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	in, ok := decodeStudentRequest(w, r)
	if !ok {
		return
	}

	dto, err := h.students.Update(r.Context(), id, in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update student")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, dto)
}

// Delete handles DELETE /api/students/{id}.
func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.students.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete student")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeStudentRequest reads and validates a StudentRequest. It writes the
// error response itself and reports whether the handler should continue.
func decodeStudentRequest(w http.ResponseWriter, r *http.Request) (service.StudentInput, bool) {
	var req StudentRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return service.StudentInput{}, false
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return service.StudentInput{}, false
	}

	dob, err := time.Parse(service.DateLayout, req.DateOfBirth)
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError("dateOfBirth", "expected format YYYY-MM-DD", nil), "")
		return service.StudentInput{}, false
	}

	return service.StudentInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: dob,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	}, true
}
