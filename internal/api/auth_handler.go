package api

import (
	"net/http"

	"github.com/clinicsys/clinic-api/internal/api/shared"
	"github.com/clinicsys/clinic-api/internal/domain"
	"github.com/clinicsys/clinic-api/internal/platform/logger"
	"github.com/clinicsys/clinic-api/internal/redact"
	"github.com/clinicsys/clinic-api/internal/service"
	"github.com/clinicsys/clinic-api/internal/service/auth"
	"github.com/google/uuid"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	users      service.UserService
	jwtService auth.JWTService
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(users service.UserService, jwtService auth.JWTService) *AuthHandler {
	return &AuthHandler{
		users:      users,
		jwtService: jwtService,
	}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var tenantID *uuid.UUID
	if req.TenantID != nil {
		id, err := uuid.Parse(*req.TenantID)
		if err != nil {
			HandleAPIError(w, r, domain.NewValidationError("tenant_id", "must be a UUID", domain.ErrInvalidID), "")
			return
		}
		tenantID = &id
	}

	user, err := h.users.Authenticate(r.Context(), tenantID, req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	resp, err := h.issueTokens(r, user)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// RefreshToken handles POST /api/auth/refresh. The user is reloaded so that
// the new tokens carry the current permissions.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		logger.FromContext(r.Context()).Debug("refresh token rejected", "error", redact.Error(err))
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	user, err := h.users.GetUser(r.Context(), claims.UserID)
	if err != nil {
		if MapErrorToStatusCode(err) == http.StatusNotFound {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	resp, err := h.issueTokens(r, user)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, RefreshTokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	})
}

func (h *AuthHandler) issueTokens(r *http.Request, user *domain.User) (*AuthResponse, error) {
	p := auth.Principal{
		UserID:      user.ID,
		TenantID:    user.TenantID,
		Permissions: user.Permissions,
	}

	access, err := h.jwtService.GenerateToken(r.Context(), p)
	if err != nil {
		return nil, err
	}
	refresh, err := h.jwtService.GenerateRefreshToken(r.Context(), p)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		UserID:       user.ID,
		TenantID:     user.TenantID,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
