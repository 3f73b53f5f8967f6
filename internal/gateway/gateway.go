// Package gateway is the web adapter: a JSON API over one chat session plus
// a small embedded page, health and Prometheus endpoints.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/flemzord/parley/internal/chat"
	"github.com/flemzord/parley/internal/metrics"
)

// Gateway serves the web API for a chat service.
type Gateway struct {
	config    Config
	chat      *chat.Service
	metrics   *metrics.Metrics
	logger    *slog.Logger
	server    *http.Server
	startedAt time.Time
	now       func() time.Time
}

// New builds a Gateway. m may be nil, in which case /metrics is not mounted.
func New(cfg Config, svc *chat.Service, m *metrics.Metrics, logger *slog.Logger) *Gateway {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		config:    cfg,
		chat:      svc,
		metrics:   m,
		logger:    logger,
		startedAt: time.Now(),
		now:       time.Now,
	}
}

// Handler returns the fully wired router.
func (g *Gateway) Handler() http.Handler {
	return g.buildRouter()
}

// Start binds the listen address and serves in the background. Bind errors
// are returned synchronously.
func (g *Gateway) Start(ctx context.Context) error {
	g.server = &http.Server{
		Addr:         g.config.Addr,
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", g.config.Addr)
	if err != nil {
		return fmt.Errorf("gateway: listen failed: %w", err)
	}

	g.startedAt = time.Now()
	go func() {
		g.logger.Info("gateway listening", "addr", ln.Addr().String(), "model", g.chat.Model())
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "op", "serve", "error", err)
		}
	}()
	return nil
}

// Stop shuts the server down gracefully within the configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
