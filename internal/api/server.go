// Package api serves the dashboard page and the JSON distance endpoint.
package api

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"net"
	"net/http"
	"ultrasonic-web/internal/config/components"
	"ultrasonic-web/internal/interfaces"
)

//go:embed web/dashboard.html
var webFS embed.FS

const (
	IndexPath    = "/"
	DistancePath = "/api/distance"

	notFoundBody = "404 - Page not found"
)

type Server struct {
	server *http.Server
	reader interfaces.IDistanceReader
	page   []byte
	errs   chan error
	logger zerolog.Logger
}

func NewServer(cfg components.ServiceConfigImpl, reader interfaces.IDistanceReader, logger zerolog.Logger) (*Server, error) {
	page, err := webFS.ReadFile("web/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}

	s := &Server{
		reader: reader,
		page:   page,
		errs:   make(chan error, 1),
		logger: logger,
	}

	s.server = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc(IndexPath, s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc(DistancePath, s.handleDistance).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.handleNotFound)

	return s.logRequests(r)
}

// Start binds the listener and serves in the background. Bind errors are
// returned directly; later serve errors arrive on Errors.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}

	s.logger.Info().
		Str("addr", listener.Addr().String()).
		Msg("HTTP server started")

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errs <- fmt.Errorf("http server stopped: %w", err)
		}
		close(s.errs)
	}()

	return nil
}

func (s *Server) Errors() <-chan error {
	return s.errs
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server...")

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Msg("graceful shutdown failed, closing")
		return s.server.Close()
	}
	return nil
}
