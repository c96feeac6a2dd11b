package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/ecowarn/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ecowarn/internal/interfaces/http/handlers"
	"github.com/turtacn/ecowarn/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies of the
// route tree.  Nil entries are skipped.
type RouterConfig struct {
	PredictionHandler *handlers.PredictionHandler
	HealthHandler     *handlers.HealthHandler
	// StatsHandler is mounted at /stats next to the metrics endpoint.
	StatsHandler *handlers.StatsHandler

	// Logging wraps every route, including probes.
	Logging func(http.Handler) http.Handler
	// RateLimit wraps the /api/v1 group only.
	RateLimit func(http.Handler) http.Handler
	// RequestTimeout bounds each /api/v1 request; zero means no bound.
	RequestTimeout time.Duration

	MetricsCollector prometheus.MetricsCollector
	MetricsPath      string
}

// NewRouter constructs the HTTP route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	if cfg.Logging != nil {
		r.Use(cfg.Logging)
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}

	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsCollector.Handler())
	}
	if cfg.StatsHandler != nil {
		r.Get("/stats", cfg.StatsHandler.Get)
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.RateLimit != nil {
			api.Use(cfg.RateLimit)
		}
		if cfg.RequestTimeout > 0 {
			api.Use(chimw.Timeout(cfg.RequestTimeout))
		}
		if cfg.PredictionHandler != nil {
			cfg.PredictionHandler.Register(api)
		}
	})

	return r
}

//Personal.AI order the ending
