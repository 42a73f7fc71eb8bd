// Package httpapi serves the broker's HTTP surface: starting authorizations,
// receiving provider callbacks, and reporting connection status.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/custodia-labs/sercha-connect/internal/core/domain"
	"github.com/custodia-labs/sercha-connect/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-connect/internal/logger"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = ":8080"

// Config wires a Server.
type Config struct {
	Addr           string
	Registry       driving.ProviderRegistry
	Authorizations driving.AuthorizationService
	Callbacks      driving.CallbackService
	Tokens         driving.TokenService

	// RateLimit is the sustained requests per second allowed per client on
	// /oauth routes. Zero disables limiting.
	RateLimit float64
	RateBurst int

	// WriteTimeout must outlast the token exchange timeout.
	WriteTimeout time.Duration
}

// Server runs the broker HTTP API.
type Server struct {
	mu       sync.Mutex
	addr     string
	handler  http.Handler
	server   *http.Server
	listener net.Listener
	errChan  chan error
	writeTTL time.Duration
}

// NewServer builds the router for cfg. Call Start to begin listening.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Registry == nil || cfg.Authorizations == nil || cfg.Callbacks == nil || cfg.Tokens == nil {
		return nil, fmt.Errorf("%w: registry, authorizations, callbacks and tokens are required", domain.ErrInvalidInput)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 30 * time.Second
	}

	engine := gin.New()
	engine.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	registerRoutes(engine, cfg)

	return &Server{
		addr:     cfg.Addr,
		handler:  otelhttp.NewHandler(engine, "sercha-connect"),
		errChan:  make(chan error, 1),
		writeTTL: cfg.WriteTimeout,
	}, nil
}

// Handler returns the instrumented router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and serves in the background.
// Serve failures are reported on Err.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return errors.New("server already started")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.writeTTL,
	}
	s.listener = listener
	s.server = srv

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errChan <- err:
			default:
			}
		}
	}()

	return nil
}

// Err reports a failure of the background serve loop.
func (s *Server) Err() <-chan error {
	return s.errChan
}

// Stop gracefully shuts the server down, waiting for in-flight callbacks
// until ctx is done.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	err := s.server.Shutdown(ctx)
	s.server = nil
	s.listener = nil
	return err
}

// Addr returns the bound address once started, or the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}
