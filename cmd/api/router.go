package main

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jobtrackhq/jobtrack/internal/config"
	"github.com/jobtrackhq/jobtrack/internal/handlers"
	"github.com/jobtrackhq/jobtrack/internal/middleware"
	"github.com/jobtrackhq/jobtrack/internal/repo"
	"github.com/jobtrackhq/jobtrack/internal/token"
)

// newRouter builds the full API handler chain. Kept separate from main so
// integration tests can mount it on an httptest server.
func newRouter(database *sql.DB, cfg config.Config) chi.Router {
	userRepo := repo.NewUserRepo(database)
	jobRepo := repo.NewJobRepo(database)
	auditRepo := repo.NewAuditRepo(database)

	tokens := token.NewService(
		[]byte(cfg.JWTSecret),
		time.Duration(cfg.JWTExpireHours)*time.Hour,
	)

	authHandler := &handlers.AuthHandler{UserRepo: userRepo, Tokens: tokens}
	jobHandler := &handlers.JobHandler{Repo: jobRepo, AuditRepo: auditRepo}
	auditHandler := &handlers.AuditHandler{Repo: auditRepo}

	hsts := cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(hsts))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
	r.Use(middleware.APIRateLimiter().Middleware)

	// Unmatched routes and wrong methods get the same JSON error shape as
	// everything else.
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		handlers.JSONError(w, "route not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		handlers.JSONError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, req *http.Request) {
		if err := database.PingContext(req.Context()); err != nil {
			handlers.JSONError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// Public auth routes, tighter rate limit than the rest of the API.
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthRateLimiter().Middleware)
		r.Post("/api/v1/auth/register", authHandler.Register)
		r.Post("/api/v1/auth/login", authHandler.Login)
	})

	// Protected routes: bearer token required, identity attached per request.
	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(tokens))
		r.Post("/api/v1/jobs", jobHandler.CreateJob)
		r.Get("/api/v1/jobs", jobHandler.ListJobs)
		r.Get("/api/v1/jobs/{id}", jobHandler.GetJob)
		r.Patch("/api/v1/jobs/{id}", jobHandler.UpdateJob)
		r.Delete("/api/v1/jobs/{id}", jobHandler.DeleteJob)
		r.Get("/api/v1/audit", auditHandler.ListAudit)
	})

	return r
}
