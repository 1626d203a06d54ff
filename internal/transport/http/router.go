// Package httptransport assembles the public HTTP surface: shared middleware,
// health and metrics endpoints, and the authenticated API routes.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jobboard/internal/platform/metrics"
	"jobboard/internal/platform/middleware"
	"jobboard/internal/users"
	"jobboard/pkg/platform/httputil"
)

const healthCheckTimeout = 2 * time.Second

// Registrar mounts a module's routes on the authenticated router.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Config carries everything NewRouter wires together. Gatherer defaults to
// the prometheus default registry.
type Config struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Validator middleware.JWTValidator
	Users     users.Lookup
	Authorize *AuthorizeHandler
	Modules   []Registrar
	Checks    map[string]HealthCheck
	// RateLimit runs after the user is resolved; nil disables it.
	RateLimit func(http.Handler) http.Handler
}

// NewRouter builds the root handler. Everything except /healthz and /metrics
// requires a bearer token for an active user.
func NewRouter(cfg Config) http.Handler {
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Latency(cfg.Metrics))

	r.Get("/healthz", healthz(cfg.Checks, cfg.Logger))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(api chi.Router) {
		api.Use(middleware.RequireAuth(cfg.Validator, cfg.Logger))
		api.Use(users.RequireActive(cfg.Users, cfg.Logger))
		if cfg.RateLimit != nil {
			api.Use(cfg.RateLimit)
		}
		if cfg.Authorize != nil {
			api.Post("/authorize", cfg.Authorize.HandleAuthorize)
		}
		for _, m := range cfg.Modules {
			m.Register(api)
		}
	})
	return r
}

// healthz answers 200 when every check passes and 503 naming the failures otherwise.
func healthz(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed", "check", name, "error", err)
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = "unavailable"
			}
		}
		httputil.WriteJSON(w, status, body)
	}
}
