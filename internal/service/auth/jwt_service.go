package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the principal.
	GenerateToken(ctx context.Context, p Principal) (string, error)

	// ValidateToken validates an access token and extracts its claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid, ErrWrongTokenType or
	// ErrInvalidToken when the token cannot be accepted.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken creates a signed refresh token for the principal.
	// Refresh tokens live longer and only serve to obtain a new token pair.
	GenerateRefreshToken(ctx context.Context, p Principal) (string, error)

	// ValidateRefreshToken validates a refresh token and extracts its claims.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the validated content of a token.
type Claims struct {
	UserID      uuid.UUID
	TenantID    *uuid.UUID
	Permissions []string
	TokenType   string

	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// Principal returns the caller identity described by the claims.
func (c *Claims) Principal() Principal {
	return Principal{
		UserID:      c.UserID,
		TenantID:    c.TenantID,
		Permissions: c.Permissions,
	}
}
