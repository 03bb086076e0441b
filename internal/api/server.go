package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-cozytouch/internal/hass"
	"github.com/nerrad567/gray-logic-cozytouch/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-cozytouch/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// EntitySource exposes the platform's entity states.
type EntitySource interface {
	Entities() []hass.EntityState
	Entity(uniqueID string) (hass.EntityState, error)
}

// CoordinatorStatus reports the health of the snapshot feed.
type CoordinatorStatus interface {
	LastUpdateSuccess() bool
	LastUpdated() time.Time
	LastError() error
}

// ConnectionStatus reports whether the MQTT client is connected.
type ConnectionStatus interface {
	IsConnected() bool
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config      config.APIConfig
	WS          config.WebSocketConfig
	Logger      *logging.Logger
	Entities    EntitySource
	Coordinator CoordinatorStatus // optional
	MQTT        ConnectionStatus  // optional
	Version     string
}

// Server is the diagnostics HTTP server.
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
type Server struct {
	cfg         config.APIConfig
	wsCfg       config.WebSocketConfig
	logger      *logging.Logger
	entities    EntitySource
	coordinator CoordinatorStatus
	mqtt        ConnectionStatus
	version     string
	server      *http.Server
	hub         *Hub
	cancel      context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The hub is created immediately so it can be registered as the platform's
// state observer before Start is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Entities == nil {
		return nil, fmt.Errorf("entity source is required")
	}

	return &Server{
		cfg:         deps.Config,
		wsCfg:       deps.WS,
		logger:      deps.Logger,
		entities:    deps.Entities,
		coordinator: deps.Coordinator,
		mqtt:        deps.MQTT,
		version:     deps.Version,
		hub:         NewHub(deps.WS, deps.Logger),
	}, nil
}

// Hub returns the WebSocket hub. It implements hass.StateObserver.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server, waiting up to 10 seconds
// for in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
