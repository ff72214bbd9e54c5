// Package api exposes scoring and scan reports over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/browserscan/trustscore/internal/metrics"
	"github.com/browserscan/trustscore/internal/report"
)

// Options tune the router.
type Options struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// Server serves the scoring and scan API.
type Server struct {
	assembler *report.Assembler
	store     report.Store
	metrics   *metrics.Metrics
	log       *slog.Logger
	opts      Options
}

// NewServer wires the handlers to assembler and store. m backs /metrics.
func NewServer(assembler *report.Assembler, store report.Store, m *metrics.Metrics, log *slog.Logger, opts Options) *Server {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	return &Server{assembler: assembler, store: store, metrics: m, log: log, opts: opts}
}

// Routes builds the chi router with middleware and all endpoints.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.RequestTimeout))

	// The collector script runs on the scan page, possibly on another origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/score", s.scoreHandler)
		r.Post("/scan", s.scanHandler)
		r.Get("/scan/{id}", s.getScanHandler)
	})

	return r
}

// requestLogger writes one structured line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
