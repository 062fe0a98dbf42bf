package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck reports whether the process is healthy. A non-nil error turns
// /health into a 503 carrying the error text.
type HealthCheck func() error

// Server serves Prometheus metrics over HTTP.
type Server struct {
	httpServer *http.Server
}

// ServerOption configures the Server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	health HealthCheck
}

// WithHealthCheck makes /health reflect check instead of always answering ok.
func WithHealthCheck(check HealthCheck) ServerOption {
	return func(o *serverOptions) {
		o.health = check
	}
}

// NewServer creates a new metrics HTTP server.
// The server exposes metrics at /metrics and liveness at /health on the given address (e.g., ":9090").
func NewServer(addr string, gatherer prometheus.Gatherer, opts ...ServerOption) *Server {
	var o serverOptions
	for _, opt := range opts {
		opt(&o)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		if o.health != nil {
			if err := o.health(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(err.Error())) //nolint:errcheck // best-effort health response
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok")) //nolint:errcheck // best-effort health response
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the HTTP handler serving /metrics and /health.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

// Start begins serving metrics. This is non-blocking.
// Returns a channel that receives an error if the server fails.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown gracefully stops the metrics server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
