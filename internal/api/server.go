// Package api implements the HTTP layer for the gameday mailer.
// Handlers are methods on *Server. Each handler file is responsible for one
// trigger group and only imports the dependencies it actually uses.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"github.com/nyashahama/gameday-mailer/internal/digest"
	"github.com/nyashahama/gameday-mailer/internal/metrics"
)

// Config holds values read from environment variables at startup.
type Config struct {
	// Production locks CORS down to CORSAllowOrigins.
	Production bool

	// RecipientEmail receives scheduled, manual and diagnostic sends. Empty
	// makes those triggers answer with a configuration error.
	RecipientEmail string

	// CronOriginMarker must be contained in the User-Agent of scheduled
	// requests, e.g. "vercel-cron".
	CronOriginMarker string

	// CORSAllowOrigins restricts the browser form. Empty allows any origin,
	// except in production where it allows none.
	CORSAllowOrigins []string

	// FormRateLimit requests per FormRateWindow are allowed per client IP on
	// the self-service route. Zero disables the limit.
	FormRateLimit  int
	FormRateWindow time.Duration

	// RequestTimeout bounds each request's context. Zero means 30s.
	RequestTimeout time.Duration
}

// Pipeline runs one digest. *digest.Service satisfies it.
type Pipeline interface {
	Run(ctx context.Context, req digest.Request) (digest.Summary, error)
}

// Server holds all shared dependencies. Each handler file attaches methods to
// this type and uses only the fields it needs.
type Server struct {
	pipeline Pipeline
	metrics  *metrics.Recorder
	cfg      Config
	logger   *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to an http.Server. rec may be nil, in which
// case /metrics answers 404.
func NewServer(pipeline Pipeline, rec *metrics.Recorder, cfg Config, logger *slog.Logger) http.Handler {
	s := &Server{
		pipeline: pipeline,
		metrics:  rec,
		cfg:      cfg,
		logger:   logger,
	}

	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(s.recoverer)
	r.Use(s.corsHandler())
	r.Use(s.requestTimeout())

	// ── Health & metrics ──────────────────────────────────────────────────────
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	// ── Triggers ──────────────────────────────────────────────────────────────
	r.Route("/api", func(r chi.Router) {
		// Scheduler only — origin marker checked before anything else runs.
		r.With(s.requireCronOrigin).Get("/cron/daily-digest", s.handleScheduledDigest)

		// Operator re-send on the same path, no origin check.
		r.Post("/cron/daily-digest", s.handleManualDigest)

		// Browser form. Rate limited per client IP.
		r.With(s.formRateLimit()).Post("/send-one-time-email", s.handleSelfService)

		// Diagnostics: ?test=true sends a synthetic slate.
		r.Get("/test-email", s.handleDiagnostic)
	})

	return r
}

// corsHandler allows the browser form to call the self-service endpoint.
func (s *Server) corsHandler() func(http.Handler) http.Handler {
	opts := corslib.Options{
		AllowedOrigins: s.cfg.CORSAllowOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         86400,
	}
	if len(opts.AllowedOrigins) == 0 {
		if s.cfg.Production {
			opts.AllowOriginFunc = func(string) bool { return false }
		} else {
			opts.AllowedOrigins = []string{"*"}
		}
	}
	return corslib.New(opts).Handler
}
