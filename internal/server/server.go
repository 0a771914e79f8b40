package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/bizdir/internal/config"
	"github.com/me/bizdir/internal/logging"
	"github.com/me/bizdir/internal/metrics"
	"github.com/me/bizdir/internal/store"
	"github.com/me/bizdir/internal/ui"
)

// Server hosts the web front end.
type Server struct {
	router     chi.Router
	logger     *slog.Logger
	config     config.ServerConfig
	startTime  time.Time
	store      store.Store
	metrics    *metrics.Metrics // optional; /metrics is only mounted when set
	httpClient *http.Client     // optional; transport for backend calls
	ui         *ui.UI
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithMetrics records request, guard and backend metrics in m and serves
// them on /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithHTTPClient sets the client used for backend calls.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Server) {
		s.httpClient = c
	}
}

// New creates a new Server with all routes registered.
func New(cfg config.ServerConfig, st store.Store, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logging.Component(logger, "server"),
		config:    cfg,
		startTime: time.Now(),
		store:     st,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.ui = ui.New(st, logger, ui.Config{
		BackendURL:  cfg.BackendURL,
		Timeout:     cfg.Timeout,
		Secure:      cfg.Secure,
		VisitorTTL:  cfg.VisitorTTL,
		SubmitRate:  cfg.SubmitRate,
		SubmitBurst: cfg.SubmitBurst,
		HTTPClient:  s.httpClient,
	})
	if s.metrics != nil {
		s.ui.WithMetrics(s.metrics)
	}

	s.routes()
	return s
}

// StartCleanup forgets idle visitors every interval until ctx is done.
func (s *Server) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanup(ctx, interval)
			}
		}
	}()
}

func (s *Server) cleanup(ctx context.Context, interval time.Duration) {
	n, err := s.store.DeleteExpiredVisitors(ctx, s.config.VisitorTTL)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("delete expired visitors", "error", err)
		}
		return
	}
	pruned := s.ui.PruneLimiter(interval)
	if n > 0 || pruned > 0 {
		s.logger.Info("cleanup", "visitors", n, "limiters", pruned)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))
	if s.metrics != nil {
		r.Use(s.metrics.InstrumentHandler(ui.RouteLabel))
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Get("/healthz", s.handleHealth)

	// UI routes (HTML)
	s.ui.RegisterRoutes(r)
}
