// Package api exposes the claim intake and alert feed over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/rumorguard/internal/llm"
	"github.com/ppiankov/rumorguard/internal/model"
	"github.com/ppiankov/rumorguard/internal/store"
	"github.com/ppiankov/rumorguard/internal/worker"
)

// ClaimProcessor turns a claim into an alert
type ClaimProcessor interface {
	Process(ctx context.Context, claim model.Claim) model.Alert
}

// Deps are the collaborators the routes need.
// Provider and Limiter may be nil.
type Deps struct {
	Processor      ClaimProcessor
	Store          *store.AlertStore
	Provider       llm.Provider
	Limiter        *worker.Limiter
	AllowedOrigins []string
	Logger         *slog.Logger
}

// New builds the gin engine with all routes attached
func New(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	g := gin.New()
	g.Use(gin.Recovery(), requestLogger(deps.Logger))
	attachRoutes(g, deps)
	return g
}

// Server wraps http.Server with context-driven shutdown
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a server for handler on addr
func NewServer(cfg model.ServerConfig, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      cfg.WriteTimeout,
		},
		logger: logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
