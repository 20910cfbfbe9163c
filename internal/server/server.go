// Package server runs the API listener and the metrics listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthChecker interface for checking component health.
type HealthChecker interface {
	Liveness() bool
	Readiness(ctx context.Context) bool
	IsHealthy() bool
	GetStatus() map[string]string
}

// Routes registers application handlers on a mux.
type Routes interface {
	Register(mux *http.ServeMux)
}

// Config contains listener settings.
type Config struct {
	Port           int
	MetricsEnabled bool
	MetricsPort    int
	MetricsPath    string
	LivenessPath   string
	ReadinessPath  string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
}

// Server owns the API server and, when enabled, the metrics server.
type Server struct {
	apiServer     *http.Server
	metricsServer *http.Server
	logger        *slog.Logger
}

// NewServer creates the HTTP servers. Health routes share the API listener.
func NewServer(cfg Config, routes Routes, checker HealthChecker, registry *prometheus.Registry, logger *slog.Logger) *Server {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc(pathOr(cfg.LivenessPath, "/health/live"), LivenessHandler(checker, logger))
	apiMux.HandleFunc(pathOr(cfg.ReadinessPath, "/health/ready"), ReadinessHandler(checker, logger))
	routes.Register(apiMux)

	s := &Server{
		apiServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      apiMux,
			ReadTimeout:  durationOr(cfg.ReadTimeout, 10*time.Second),
			WriteTimeout: durationOr(cfg.WriteTimeout, 60*time.Second),
			IdleTimeout:  durationOr(cfg.IdleTimeout, 120*time.Second),
		},
		logger: logger,
	}

	if cfg.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(pathOr(cfg.MetricsPath, "/metrics"), promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		s.metricsServer = &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.MetricsPort),
			Handler:      metricsMux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
	}

	return s
}

// Handler returns the API handler, including health routes.
func (s *Server) Handler() http.Handler {
	return s.apiServer.Handler
}

// MetricsHandler returns the metrics handler, or nil when metrics are disabled.
func (s *Server) MetricsHandler() http.Handler {
	if s.metricsServer == nil {
		return nil
	}
	return s.metricsServer.Handler
}

// Start binds the listeners and serves in the background. Bind failures
// are returned; later serve failures are logged.
func (s *Server) Start() error {
	servers := []*http.Server{s.apiServer}
	if s.metricsServer != nil {
		servers = append(servers, s.metricsServer)
	}

	listeners := make([]net.Listener, 0, len(servers))
	for _, srv := range servers {
		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			for _, l := range listeners {
				l.Close()
			}
			return fmt.Errorf("listen on %s: %w", srv.Addr, err)
		}
		listeners = append(listeners, ln)
	}

	for i, srv := range servers {
		go s.serve(srv, listeners[i])
	}
	return nil
}

func (s *Server) serve(srv *http.Server, ln net.Listener) {
	s.logger.Info("starting HTTP server", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("HTTP server failed", "addr", srv.Addr, "error", err)
	}
}

// Shutdown gracefully shuts down both servers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP servers")

	servers := []*http.Server{s.apiServer}
	if s.metricsServer != nil {
		servers = append(servers, s.metricsServer)
	}

	errChan := make(chan error, len(servers))
	for _, srv := range servers {
		go func() {
			errChan <- srv.Shutdown(ctx)
		}()
	}

	var lastErr error
	for range servers {
		if err := <-errChan; err != nil {
			s.logger.Error("error shutting down server", "error", err)
			lastErr = err
		}
	}

	return lastErr
}

func pathOr(path, fallback string) string {
	if path == "" {
		return fallback
	}
	return path
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
