package auth

import (
	"context"
	"testing"
	"time"

	"github.com/clinicsys/clinic-api/internal/config"
	"github.com/stretchr/testify/require"
)

// DefaultJWTConfig returns a standard configuration for JWT authentication suitable for testing.
func DefaultJWTConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   "test-jwt-secret-that-is-32-chars-long",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
		BCryptCost:                  4,
	}
}

// NewTestJWTService creates a JWT service signing with secret whose clock is
// timeFunc. A nil timeFunc means time.Now.
func NewTestJWTService(secret string, lifetime time.Duration, timeFunc func() time.Time) JWTService {
	if timeFunc == nil {
		timeFunc = time.Now
	}
	return &hmacJWTService{
		signingKey:           []byte(secret),
		tokenLifetime:        lifetime,
		refreshTokenLifetime: 24 * lifetime,
		timeFunc:             timeFunc,
		clockSkew:            2 * time.Minute,
	}
}

// RequireTestJWTService creates a JWT service from DefaultJWTConfig.
func RequireTestJWTService(t *testing.T) JWTService {
	t.Helper()
	svc, err := NewJWTService(DefaultJWTConfig())
	require.NoError(t, err, "Failed to create test JWT service")
	return svc
}

// GenerateAuthHeaderForTestingT returns a "Bearer <token>" header value for p
// signed by svc.
func GenerateAuthHeaderForTestingT(t *testing.T, svc JWTService, p Principal) string {
	t.Helper()
	token, err := svc.GenerateToken(context.Background(), p)
	require.NoError(t, err, "Failed to generate auth header")
	return "Bearer " + token
}
