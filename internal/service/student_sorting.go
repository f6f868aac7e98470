package service

import (
	"fmt"
	"strings"

	"github.com/clinicsys/clinic-api/internal/domain"
	"github.com/clinicsys/clinic-api/internal/store"
)

var defaultStudentSort = []store.StudentSort{
	{Key: store.StudentSortLastName},
	{Key: store.StudentSortFirstName},
}

var studentSortAliases = map[string]store.StudentSortKey{
	"firstname":     store.StudentSortFirstName,
	"first_name":    store.StudentSortFirstName,
	"lastname":      store.StudentSortLastName,
	"last_name":     store.StudentSortLastName,
	"dateofbirth":   store.StudentSortDateOfBirth,
	"date_of_birth": store.StudentSortDateOfBirth,
	"email":         store.StudentSortEmail,
	"creationtime":  store.StudentSortCreationTime,
	"creation_time": store.StudentSortCreationTime,
}

// ParseStudentSorting parses a sorting expression such as
// "lastName desc, firstName". Field names are case-insensitive and may be
// written in snake_case. A blank expression yields last name then first
// name, both ascending.
func ParseStudentSorting(expr string) ([]store.StudentSort, error) {
	if strings.TrimSpace(expr) == "" {
		return append([]store.StudentSort(nil), defaultStudentSort...), nil
	}

	var sorts []store.StudentSort
	for _, term := range strings.Split(expr, ",") {
		fields := strings.Fields(term)
		if len(fields) == 0 || len(fields) > 2 {
			return nil, domain.NewValidationError("sorting", fmt.Sprintf("invalid term %q", strings.TrimSpace(term)), nil)
		}

		key, ok := studentSortAliases[strings.ToLower(fields[0])]
		if !ok {
			return nil, domain.NewValidationError("sorting", fmt.Sprintf("cannot sort by %q", fields[0]), nil)
		}

		sort := store.StudentSort{Key: key}
		if len(fields) == 2 {
			switch strings.ToLower(fields[1]) {
			case "asc":
			case "desc":
				sort.Desc = true
			default:
				return nil, domain.NewValidationError("sorting", fmt.Sprintf("invalid direction %q", fields[1]), nil)
			}
		}
		sorts = append(sorts, sort)
	}
	return sorts, nil
}
