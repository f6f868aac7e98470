package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/clinicsys/clinic-api/internal/config"
	"github.com/clinicsys/clinic-api/internal/platform/metrics"
	"github.com/clinicsys/clinic-api/internal/platform/postgres"
	"github.com/clinicsys/clinic-api/internal/service"
	"github.com/clinicsys/clinic-api/internal/service/auth"
	"github.com/clinicsys/clinic-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	clock  func() time.Time

	metrics *metrics.Metrics

	userStore    store.UserStore
	studentStore store.StudentStore

	jwtService     auth.JWTService
	passwords      *auth.BcryptVerifier
	userService    service.UserService
	studentService service.StudentService
}

// newApplication opens the database and wires every dependency.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	app, err := buildApplication(cfg, db, metrics.New(true), logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

// buildApplication wires the stores and services over an open database.
func buildApplication(
	cfg *config.Config,
	db *sql.DB,
	m *metrics.Metrics,
	logger *slog.Logger,
) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		clock:   time.Now,
		metrics: m,
	}

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.studentStore = postgres.NewPostgresStudentStore(db, logger)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	app.jwtService = jwtService
	app.passwords = auth.NewBcryptVerifier(cfg.Auth.BCryptCost)

	app.userService, err = service.NewUserService(app.userStore, db, app.passwords, app.passwords, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.studentService, err = service.NewStudentService(
		app.studentStore, db, cfg.Students, m, app.clock, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create student service: %w", err)
	}

	return app, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", "error", err)
		}
	}
}
