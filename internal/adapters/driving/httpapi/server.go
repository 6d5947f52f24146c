// Package httpapi exposes the dashboard read API and the sync and
// proposal triggers over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/custodia-labs/meetsync/internal/core/ports/driving"
	"github.com/custodia-labs/meetsync/internal/logger"
)

// Default server configuration.
const (
	DefaultAddr         = ":8080"
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultIdleTimeout  = 60 * time.Second
)

// Config holds HTTP server configuration.
type Config struct {
	// Addr is the listen address (default :8080).
	Addr string

	// ReadTimeout, WriteTimeout and IdleTimeout bound connection handling.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// RateLimit is the per-IP request budget per minute.
	// Zero uses DefaultRequestsPerMinute; negative disables limiting.
	RateLimit int
}

// Server wraps http.Server with route registration and graceful shutdown.
type Server struct {
	httpServer *http.Server
}

// NewServer constructs the API server around the driving services.
// The proposal service may be nil, in which case POST /generate-proposal
// responds 503.
func NewServer(
	cfg Config,
	meetings driving.MeetingReader,
	sync driving.SyncService,
	proposals driving.ProposalService,
) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}

	h := &handler{
		meetings:  meetings,
		sync:      sync,
		proposals: proposals,
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      newRouter(h, cfg.RateLimit),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

// newRouter registers all routes and wraps them in the rate limiter.
func newRouter(h *handler, rateLimit int) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.healthCheck)
	mux.HandleFunc("GET /meetings", h.listMeetings)
	mux.HandleFunc("GET /meetings/{id}", h.getMeeting)
	mux.HandleFunc("POST /calendar/sync", h.triggerSync)
	mux.HandleFunc("POST /generate-proposal", h.generateProposal)

	if rateLimit < 0 {
		return mux
	}
	return rateLimitMiddleware(mux, rateLimit)
}

// Start runs the server until it fails or Shutdown is called.
// http.ErrServerClosed is swallowed: that is the normal shutdown path.
func (s *Server) Start() error {
	logger.Info("HTTP API listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
