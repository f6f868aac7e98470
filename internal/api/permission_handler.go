package api

import (
	"net/http"

	"github.com/clinicsys/clinic-api/internal/api/shared"
	"github.com/clinicsys/clinic-api/internal/domain"
	"github.com/clinicsys/clinic-api/internal/service"
	"github.com/clinicsys/clinic-api/internal/service/auth"
)

// ListPermissions handles GET /api/permissions. Granted holds only the
// permissions that are effective for the caller.
func ListPermissions(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, service.ErrUnauthenticated, "")
		return
	}

	granted := []string{}
	for _, name := range domain.AllPermissions() {
		if p.IsGranted(name) {
			granted = append(granted, name)
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PermissionsResponse{
		Groups:  domain.PermissionGroups(),
		Granted: granted,
	})
}
