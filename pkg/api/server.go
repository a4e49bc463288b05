// Package api exposes the predecessor index over HTTP for embedding
// clients that are not linked against the Go library.
package api

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/cluso-fastindex/pkg/api/middleware"
	"github.com/dd0wney/cluso-fastindex/pkg/fastidx"
	"github.com/dd0wney/cluso-fastindex/pkg/logging"
	"github.com/dd0wney/cluso-fastindex/pkg/metrics"
)

// Server serves queries against one immutable index. The index is built
// before the server starts and never swapped, so handlers read it
// without synchronization.
type Server struct {
	cfg     Config
	tree    *fastidx.Tree
	logger  logging.Logger
	metrics *metrics.Registry

	server       *http.Server
	shutdownOnce sync.Once
}

// NewServer wires the handler stack around an already-built index.
func NewServer(cfg Config, tree *fastidx.Tree, logger logging.Logger, reg *metrics.Registry) *Server {
	s := &Server{
		cfg:     cfg,
		tree:    tree,
		logger:  logger,
		metrics: reg,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/search", s.handleSearch)
	mux.HandleFunc("GET /v1/lower-bound", s.handleLowerBound)
	mux.HandleFunc("GET /v1/stats", s.handleStats)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.HandlerFor(
		reg.GetPrometheusRegistry(), promhttp.HandlerOpts{}))

	var handler http.Handler = mux
	handler = middleware.Metrics(reg)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID()(handler)

	s.server = &http.Server{
		Addr:           cfg.ListenAddr,
		Handler:        handler,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	return s
}

// Handler returns the full middleware-wrapped handler, used by the
// tests to drive the server through httptest instead of its own
// listener.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start runs the server until it fails or a shutdown signal arrives.
func (s *Server) Start() error {
	go s.handleSignals()

	s.logger.Info("server listening",
		logging.String("addr", s.cfg.ListenAddr),
		logging.Keys(s.tree.Len()),
	)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener. Safe to
// call more than once.
func (s *Server) Shutdown(timeout time.Duration) error {
	var err error
	s.shutdownOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		s.logger.Info("shutting down", logging.Duration("timeout", timeout))
		err = s.server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	s.logger.Info("signal received", logging.String("signal", sig.String()))
	timeout := time.Duration(s.cfg.ShutdownTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if err := s.Shutdown(timeout); err != nil {
		s.logger.Error("shutdown failed", logging.Error(err))
	}
}
