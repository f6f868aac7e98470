package service

import (
	"time"

	"github.com/clinicsys/clinic-api/internal/domain"
	"github.com/google/uuid"
)

// StudentDTO is the read model of a student returned to clients. Tenant,
// deletion, audit and concurrency fields are not exposed.
type StudentDTO struct {
	ID           uuid.UUID `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	DateOfBirth  string    `json:"dateOfBirth"`
	Age          int       `json:"age"`
	Email        *string   `json:"email"`
	PhoneNumber  *string   `json:"phoneNumber"`
	Address      *string   `json:"address"`
	CreationTime time.Time `json:"creationTime"`
}

// PagedResult is one page of items plus the number of matches before paging.
type PagedResult[T any] struct {
	TotalCount int64 `json:"totalCount"`
	Items      []T   `json:"items"`
}

// DateLayout is the wire format of a date of birth.
const DateLayout = "2006-01-02"

// ToStudentDTO maps a student to its DTO, deriving Age as of now.
func ToStudentDTO(s *domain.Student, now time.Time) StudentDTO {
	return StudentDTO{
		ID:           s.ID,
		FirstName:    s.FirstName(),
		LastName:     s.LastName(),
		DateOfBirth:  s.DateOfBirth().Format(DateLayout),
		Age:          s.AgeAt(now),
		Email:        s.Email(),
		PhoneNumber:  s.PhoneNumber(),
		Address:      s.Address(),
		CreationTime: s.CreationTime,
	}
}

// ToStudentDTOs maps a slice of students.
func ToStudentDTOs(students []*domain.Student, now time.Time) []StudentDTO {
	out := make([]StudentDTO, 0, len(students))
	for _, s := range students {
		out = append(out, ToStudentDTO(s, now))
	}
	return out
}
