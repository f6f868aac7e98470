package main

import (
	"context"
	"net/http"
	"time"

	"github.com/clinicsys/clinic-api/internal/api"
	apiMiddleware "github.com/clinicsys/clinic-api/internal/api/middleware"
	"github.com/clinicsys/clinic-api/internal/api/shared"
	"github.com/clinicsys/clinic-api/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const healthCheckTimeout = 2 * time.Second

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.withBaseLogger)
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(app.metrics.InstrumentHandler)

	authHandler := api.NewAuthHandler(app.userService, app.jwtService)
	studentHandler := api.NewStudentHandler(app.studentService)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/permissions", api.ListPermissions)

			r.Route("/students", func(r chi.Router) {
				r.Get("/", studentHandler.List)
				r.Post("/", studentHandler.Create)
				r.Get("/{id}", studentHandler.Get)
				r.Put("/{id}", studentHandler.Update)
				r.Delete("/{id}", studentHandler.Delete)
			})
		})
	})

	r.Get("/health", app.handleHealth)
	if app.metrics != nil {
		r.Handle("/metrics", app.metrics.Handler())
	}

	return r
}

// withBaseLogger puts the application logger on the request context so that
// later middleware can enrich it.
func (app *application) withBaseLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if reqID := middleware.GetReqID(ctx); reqID != "" {
			ctx = logger.WithRequestID(logger.WithLogger(ctx, app.logger), reqID)
		} else {
			ctx = logger.WithLogger(ctx, app.logger)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// handleHealth reports whether the database is reachable.
func (app *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := app.db.PingContext(ctx); err != nil {
		logger.FromContext(r.Context()).Warn("health check failed", "error", err)
		shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, healthResponse{
			Status:   "unavailable",
			Database: "unreachable",
		})
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, healthResponse{Status: "ok", Database: "ok"})
}
