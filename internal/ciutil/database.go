package ciutil

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/clinicsys/clinic-api/internal/redact"
)

// Connection defaults of the CI PostgreSQL service.
const (
	StandardCIUser     = "postgres"
	StandardCIPassword = "postgres"
	StandardCIPort     = "5432"
	StandardCIDatabase = "clinic_test"
	StandardCIOptions  = "sslmode=disable"
)

// GetTestDatabaseURL returns the database URL for integration tests, or ""
// when none is configured. CLINIC_TEST_DB_URL is preferred over
// DATABASE_URL and CLINIC_DATABASE_URL. On CI the URL is normalised to the
// standard service credentials.
func GetTestDatabaseURL(logger *slog.Logger) string {
	dbURL := GetEnvWithFallbacks(
		[]string{EnvClinicTestDBURL, EnvDatabaseURL, EnvClinicDatabaseURL}, "", logger)
	if dbURL == "" || !IsCI() {
		return dbURL
	}

	standardized, err := StandardizeDatabaseURL(dbURL)
	if err != nil {
		if logger != nil {
			logger.Error("failed to standardize database URL",
				"error", err,
				"url", redact.String(dbURL))
		}
		return dbURL
	}
	if standardized != dbURL && logger != nil {
		logger.Info("standardized database URL for CI", "url", redact.String(standardized))
	}
	return standardized
}

// StandardizeDatabaseURL rewrites a postgres URL to the CI credentials and
// fills in a missing port, database name and options. Other schemes are
// returned unchanged.
func StandardizeDatabaseURL(dbURL string) (string, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse database URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return dbURL, nil
	}

	out := *u
	out.User = url.UserPassword(StandardCIUser, StandardCIPassword)

	host := u.Hostname()
	if u.Port() == "" && (host == "" || host == "localhost" || host == "127.0.0.1") {
		if host == "" {
			host = "localhost"
		}
		out.Host = host + ":" + StandardCIPort
	}
	if strings.TrimPrefix(u.Path, "/") == "" {
		out.Path = "/" + StandardCIDatabase
	}
	if u.RawQuery == "" {
		out.RawQuery = StandardCIOptions
	}

	return out.String(), nil
}
