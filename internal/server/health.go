package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jittakal/podstats/pkg/blobs"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// LivenessHandler returns a handler for Kubernetes liveness probes.
// Liveness probes should only fail if the process needs to be restarted.
func LivenessHandler(checker HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "alive"
		statusCode := http.StatusOK

		if !checker.Liveness() {
			status = "not alive"
			statusCode = http.StatusServiceUnavailable
		}

		writeHealth(w, statusCode, HealthResponse{
			Status:    status,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}, logger)
	}
}

// ReadinessHandler returns a handler for Kubernetes readiness probes.
// Readiness probes indicate if the application can handle traffic.
func ReadinessHandler(checker HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ready"
		statusCode := http.StatusOK

		if !checker.Readiness(r.Context()) {
			status = "not ready"
			statusCode = http.StatusServiceUnavailable
		}

		writeHealth(w, statusCode, HealthResponse{
			Status:    status,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    checker.GetStatus(),
		}, logger)
	}
}

func writeHealth(w http.ResponseWriter, statusCode int, response HealthResponse, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed to encode health response", "error", err)
	}
}

// StoreChecker reports readiness by listing a probe prefix on each store.
type StoreChecker struct {
	stores      map[string]blobs.Store
	probePrefix string
	timeout     time.Duration
	draining    atomic.Bool

	mu     sync.RWMutex
	status map[string]string
}

// NewStoreChecker creates a checker over the named stores.
func NewStoreChecker(stores map[string]blobs.Store, probePrefix string, timeout time.Duration) *StoreChecker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &StoreChecker{
		stores:      stores,
		probePrefix: probePrefix,
		timeout:     timeout,
		status:      make(map[string]string),
	}
}

// Drain marks the service as shutting down; readiness fails from then on.
func (c *StoreChecker) Drain() {
	c.draining.Store(true)
}

// Liveness reports whether the process is running.
func (c *StoreChecker) Liveness() bool {
	return true
}

// Readiness probes every store and records the outcome per store.
func (c *StoreChecker) Readiness(ctx context.Context) bool {
	status := make(map[string]string, len(c.stores)+1)
	ready := true

	if c.draining.Load() {
		status["shutdown"] = "draining"
		ready = false
	}

	for name, store := range c.stores {
		probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
		_, err := store.List(probeCtx, c.probePrefix)
		cancel()
		if err != nil {
			status[name] = "error: " + err.Error()
			ready = false
			continue
		}
		status[name] = "ok"
	}

	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
	return ready
}

// IsHealthy reports whether the last readiness probe succeeded.
func (c *StoreChecker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.status {
		if s != "ok" {
			return false
		}
	}
	return true
}

// GetStatus returns the result of the last readiness probe.
func (c *StoreChecker) GetStatus() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.status)
}
