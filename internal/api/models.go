package api

import (
	"github.com/clinicsys/clinic-api/internal/domain"
	"github.com/google/uuid"
)

// LoginRequest defines the payload for the login endpoint. TenantID is empty
// for host users.
type LoginRequest struct {
	Email    string  `json:"email"               validate:"required,email"`
	Password string  `json:"password"            validate:"required,min=1,max=72"`
	TenantID *string `json:"tenant_id,omitempty" validate:"omitempty,uuid"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID       uuid.UUID  `json:"user_id"`
	TenantID     *uuid.UUID `json:"tenant_id,omitempty"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// StudentRequest is the body of the create and update student endpoints.
// Domain rules run again in the service; these tags reject malformed input early.
type StudentRequest struct {
	FirstName   string  `json:"firstName"   validate:"required,max=64"`
	LastName    string  `json:"lastName"    validate:"required,max=64"`
	DateOfBirth string  `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	Email       *string `json:"email"       validate:"omitempty,email,max=256"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,max=20"`
	Address     *string `json:"address"     validate:"omitempty,max=512"`
}

// PermissionsResponse lists the permission tree and the caller's effective grants.
type PermissionsResponse struct {
	Groups  []domain.PermissionGroup `json:"groups"`
	Granted []string                 `json:"granted"`
}
