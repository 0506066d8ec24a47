// Package http provides the HTTP server for the showbook API.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmylchreest/showbook/internal/config"
	"github.com/jmylchreest/showbook/internal/http/middleware"
)

const idleTimeout = 120 * time.Second

// Registrar registers its operations on the API.
type Registrar interface {
	Register(api huma.API)
}

// Server represents the HTTP server.
type Server struct {
	config     config.ServerConfig
	router     *chi.Mux
	api        huma.API
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates the router, middleware chain and API. version is
// published in the OpenAPI document.
func NewServer(cfg config.ServerConfig, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if version == "" {
		version = "dev"
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.NewLoggingMiddleware(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(chimiddleware.Compress(5))

	humaConfig := huma.DefaultConfig("showbook API", version)
	humaConfig.Info.Description = "Catalog of marching shows and arrangements with filterable, paginated listings"

	return &Server{
		config: cfg,
		router: router,
		api:    humachi.New(router, humaConfig),
		logger: logger,
	}
}

// API returns the Huma API instance for registering operations.
func (s *Server) API() huma.API {
	return s.api
}

// Router returns the Chi router for registering additional routes.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Register registers every handler's operations.
func (s *Server) Register(handlers ...Registrar) {
	for _, h := range handlers {
		h.Register(s.api)
	}
}

// Start listens until the server is shut down.
func (s *Server) Start() error {
	addr := s.config.Address()
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  idleTimeout,
	}

	s.logger.Info("starting HTTP server", slog.String("address", addr))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("shutting down HTTP server", slog.Duration("timeout", s.config.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// ListenAndServe starts the server and shuts it down when ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Start()
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}
