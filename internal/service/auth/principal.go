package auth

import (
	"context"

	"github.com/clinicsys/clinic-api/internal/domain"
	"github.com/google/uuid"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID      uuid.UUID
	TenantID    *uuid.UUID
	Permissions []string
}

// IsGranted reports whether permission is effective for the principal.
func (p Principal) IsGranted(permission string) bool {
	return domain.IsGranted(p.Permissions, permission)
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored on ctx.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
