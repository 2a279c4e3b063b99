// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spigell/resume-scorer/internal/analysis"
	"github.com/spigell/resume-scorer/internal/metrics"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	defaultListen      = ":8080"
	defaultMaxUploadMB = 10
	shutdownTimeout    = 10 * time.Second
)

// Analyzer runs a single resume analysis.
type Analyzer interface {
	Run(ctx context.Context, req analysis.Request) (*analysis.Report, error)
}

// Catalog lists the curated role and industry keys.
type Catalog interface {
	Roles() []string
	Industries() []string
}

// Config holds the HTTP server settings.
type Config struct {
	Listen          string        `mapstructure:"listen" validate:"required"`
	RateLimitPerMin int           `mapstructure:"rate-limit-per-min" validate:"gte=0"`
	CORSOrigins     []string      `mapstructure:"cors-origins"`
	MaxUploadMB     int64         `mapstructure:"max-upload-mb" validate:"gte=0"`
	RequestTimeout  time.Duration `mapstructure:"request-timeout" validate:"gte=0"`
}

// Deps are the collaborators of the server. Analyzer and Catalog are required.
type Deps struct {
	Analyzer       Analyzer
	Catalog        Catalog
	Metrics        *metrics.Recorder
	MetricsHandler http.Handler
	Logger         *zap.Logger
}

// Server serves the HTTP API.
type Server struct {
	cfg      Config
	analyzer Analyzer
	catalog  Catalog
	metrics  *metrics.Recorder
	exporter http.Handler
	logger   *zap.Logger
}

// New builds a Server.
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Analyzer == nil {
		return nil, errors.New("analyzer is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("catalog is required")
	}

	if strings.TrimSpace(cfg.Listen) == "" {
		cfg.Listen = defaultListen
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = defaultMaxUploadMB
	}

	exporter := deps.MetricsHandler
	if exporter == nil {
		exporter = promhttp.Handler()
	}

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Server{
		cfg:      cfg,
		analyzer: deps.Analyzer,
		catalog:  deps.Catalog,
		metrics:  deps.Metrics,
		exporter: exporter,
		logger:   log,
	}, nil
}

// Router builds the HTTP handler with all middlewares and routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverer)
	r.Use(s.requestID)
	r.Use(s.accessLog)
	r.Use(s.metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   parseOrigins(s.cfg.CORSOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Group(func(wr chi.Router) {
		if s.cfg.RateLimitPerMin > 0 {
			wr.Use(httprate.LimitByIP(s.cfg.RateLimitPerMin, time.Minute))
		}
		if s.cfg.RequestTimeout > 0 {
			wr.Use(timeout(s.cfg.RequestTimeout))
		}
		wr.Post("/v1/analyze", s.analyzeHandler)
		wr.Post("/v1/analyze/upload", s.uploadHandler)
	})

	r.Get("/v1/roles", s.rolesHandler)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", s.exporter)

	return otelhttp.NewHandler(r, "resume-scorer",
		otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
			return req.Method + " " + req.URL.Path
		}),
	)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("listen", s.cfg.Listen))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

// parseOrigins trims the configured origins, defaulting to "*".
func parseOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
