package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type stubRoutes struct{}

func (stubRoutes) Register(mux *http.ServeMux) {
	mux.HandleFunc("/downloads/show/{showUuid}", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "show="+r.PathValue("showUuid"))
	})
}

func newTestRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_metric_total",
		Help: "Test metric",
	})
	registry.MustRegister(counter)
	counter.Inc()
	return registry
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestServer_Routes(t *testing.T) {
	checker := &mockHealthChecker{liveness: true, readiness: true}
	srv := NewServer(Config{Port: 8080, MetricsEnabled: true, MetricsPort: 9090}, stubRoutes{}, checker, newTestRegistry(), discardLogger())

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{"/health/live", http.StatusOK, `"alive"`},
		{"/health/ready", http.StatusOK, `"ready"`},
		{"/downloads/show/abc", http.StatusOK, "show=abc"},
		{"/metrics", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("body = %s", w.Body.String())
			}
		})
	}
}

func TestServer_CustomHealthPaths(t *testing.T) {
	checker := &mockHealthChecker{liveness: true, readiness: true}
	srv := NewServer(Config{Port: 8080, LivenessPath: "/livez", ReadinessPath: "/readyz"}, stubRoutes{}, checker, newTestRegistry(), discardLogger())

	for _, path := range []string{"/livez", "/readyz"} {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, w.Code)
		}
	}
}

func TestServer_MetricsHandler(t *testing.T) {
	checker := &mockHealthChecker{liveness: true, readiness: true}
	srv := NewServer(Config{Port: 8080, MetricsEnabled: true, MetricsPort: 9090}, stubRoutes{}, checker, newTestRegistry(), discardLogger())

	w := httptest.NewRecorder()
	srv.MetricsHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "test_metric_total 1") {
		t.Errorf("metrics body = %s", w.Body.String())
	}
}

func TestServer_MetricsDisabled(t *testing.T) {
	srv := NewServer(Config{Port: 8080}, stubRoutes{}, &mockHealthChecker{}, newTestRegistry(), discardLogger())
	if srv.MetricsHandler() != nil {
		t.Error("MetricsHandler() should be nil when metrics are disabled")
	}
}

func TestServer_StartAndShutdown(t *testing.T) {
	port := freePort(t)
	metricsPort := freePort(t)
	checker := &mockHealthChecker{liveness: true, readiness: true}
	srv := NewServer(Config{Port: port, MetricsEnabled: true, MetricsPort: metricsPort}, stubRoutes{}, checker, newTestRegistry(), discardLogger())

	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	resp, err := http.Get("http://127.0.0.1:" + strconv.Itoa(port) + "/health/live")
	if err != nil {
		t.Fatalf("GET live: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("live status = %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestServer_StartPortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	srv := NewServer(Config{Port: port}, stubRoutes{}, &mockHealthChecker{}, newTestRegistry(), discardLogger())
	if err := srv.Start(); err == nil {
		srv.Shutdown(context.Background())
		t.Fatal("Start() expected error for port in use")
	}
}
