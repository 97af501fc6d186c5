package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/finpipe/statement-ledger/internal/adapter/http/handler"
	"github.com/finpipe/statement-ledger/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	UploadHandler  *handler.UploadHandler
	AnalystHandler *handler.AnalystHandler
	HealthHandler  *handler.HealthHandler
	// RateLimiter throttles the ask endpoints when set.
	RateLimiter        *middleware.RateLimiter
	CORSAllowedOrigins []string
	// MetricsHandler defaults to the Prometheus default registry handler.
	MetricsHandler http.Handler
	Logger         zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler)

	// Pages
	r.Get("/", cfg.UploadHandler.Page)
	r.Post("/", cfg.UploadHandler.Upload)
	r.Get("/analyst", cfg.AnalystHandler.Page)

	// Ingestion API
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/statements", cfg.UploadHandler.Ingest)
		r.Post("/transform", cfg.UploadHandler.Transform)
	})

	// Question answering
	r.Group(func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}

		r.Post("/ask", cfg.AnalystHandler.Ask)
		r.Post("/api/v1/ask", cfg.AnalystHandler.Ask)
	})

	return r
}
