// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sigil-dev/graphdl/internal/graphdb"
	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
	"github.com/sigil-dev/graphdl/pkg/health"
)

// Config holds HTTP server configuration.
type Config struct {
	ListenAddr   string
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	RateLimit    RateLimitConfig
	Version      string
	Logger       *slog.Logger
}

// Server exposes a graph store over a chi router with a huma API.
type Server struct {
	router    chi.Router
	api       huma.API
	cfg       Config
	db        *graphdb.DB
	logger    *slog.Logger
	startedAt time.Time
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Server with every API route registered.
func New(cfg Config, db *graphdb.DB) (*Server, error) {
	if cfg.ListenAddr == "" {
		return nil, graphdlerr.New(graphdlerr.CodeServerConfigInvalid, "listen address is required")
	}
	if db == nil {
		return nil, graphdlerr.New(graphdlerr.CodeServerConfigInvalid, "graph store is required")
	}
	if err := cfg.RateLimit.Validate(); err != nil {
		return nil, err
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 60 * time.Second
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:       cfg,
		db:        db,
		logger:    logger,
		startedAt: time.Now(),
		done:      make(chan struct{}),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(accessLog(logger))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(corsMiddleware(cfg.CORSOrigins))
	}
	r.Use(rateLimitMiddleware(cfg.RateLimit, logger, s.done))

	humaConfig := huma.DefaultConfig("graphdl", cfg.Version)
	humaConfig.Info.Description = "Semantic entity and relationship store"
	s.router = r
	s.api = humachi.New(r, humaConfig)

	huma.Register(s.api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"system"},
	}, func(_ context.Context, _ *struct{}) (*HealthResponse, error) {
		return &HealthResponse{Body: health.NewReport(s.cfg.Version, s.startedAt, time.Now())}, nil
	})

	s.registerRoutes()
	return s, nil
}

// Handler returns the underlying http.Handler for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// API returns the huma API, e.g. to render the OpenAPI document.
func (s *Server) API() huma.API {
	return s.api
}

// Close stops background goroutines. It does not close the graph store.
func (s *Server) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

// Start runs the HTTP server and blocks until the context is cancelled,
// then performs graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	defer func() { _ = s.Close() }()

	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return graphdlerr.Wrapf(err, graphdlerr.CodeServerStartFailure, "listening on %s", s.cfg.ListenAddr)
	}

	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
	s.logger.Info("api listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return graphdlerr.Wrap(err, graphdlerr.CodeServerStartFailure, "serving")
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return graphdlerr.Wrap(err, graphdlerr.CodeServerStartFailure, "shutting down")
	}
	s.logger.Info("api stopped")

	if err := <-errCh; err != nil {
		return graphdlerr.Wrap(err, graphdlerr.CodeServerStartFailure, "serving")
	}
	return nil
}

// HealthResponse wraps the health check response.
type HealthResponse struct {
	Body health.Report
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	})
}
