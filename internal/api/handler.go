// Package api exposes download queries and pacing charts over HTTP.
package api

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jittakal/podstats/internal/errors"
	"github.com/jittakal/podstats/internal/pacing"
	"github.com/jittakal/podstats/internal/params"
	"github.com/jittakal/podstats/internal/query"
	"github.com/jittakal/podstats/pkg/blobs"
)

// ParamReadOnly selects the read-only replica store when present.
const ParamReadOnly = "ro"

const maxPacingBodyBytes = 8 * 1024 * 1024

// PacingMetrics records pacing chart output.
type PacingMetrics interface {
	AddPacingSeries(count int)
}

// Stores holds the blob stores a request may be routed to.
// Replica is nil when no read-only replica is configured.
type Stores struct {
	Primary blobs.Store
	Replica blobs.Store
}

// Handler serves the API routes.
type Handler struct {
	executor *query.Executor
	stores   Stores
	contract params.Contract
	metrics  PacingMetrics
	logger   *slog.Logger
}

// NewHandler creates an API handler. metrics may be nil.
func NewHandler(executor *query.Executor, stores Stores, contract params.Contract, metrics PacingMetrics, logger *slog.Logger) *Handler {
	return &Handler{
		executor: executor,
		stores:   stores,
		contract: contract,
		metrics:  metrics,
		logger:   logger,
	}
}

// Register adds the API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/downloads/show/{showUuid}", h.ShowDownloads)
	mux.HandleFunc("/pacing", h.Pacing)
}

// ShowDownloads handles GET /downloads/show/{showUuid}.
func (h *Handler) ShowDownloads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method), h.logger)
		return
	}

	values := r.URL.Query()
	req, err := query.ParseRequest(r.PathValue("showUuid"), values, h.contract)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	store, err := h.selectStore(values.Has(ParamReadOnly))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Debug("Executing download query",
		"show", req.ShowUUID,
		"format", req.Format,
		"bots", req.Bots,
		"start", req.Start(),
		"limit", req.Limit,
		"replica", values.Has(ParamReadOnly),
	)

	result, err := h.executor.Execute(r.Context(), store, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeResult(w, result, h.logger)
}

// PacingRequest is the body of POST /pacing.
type PacingRequest struct {
	Episodes               []pacing.Episode               `json:"episodes"`
	EpisodeHourlyDownloads map[string]pacing.HourlySeries `json:"episodeHourlyDownloads"`
}

// Pacing handles POST /pacing.
func (h *Handler) Pacing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method), h.logger)
		return
	}

	var body PacingRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPacingBodyBytes)).Decode(&body); err != nil {
		h.fail(w, r, &errors.BadRequestError{Param: "body", Reason: err.Error()})
		return
	}

	chart := pacing.Aggregate(body.Episodes, body.EpisodeHourlyDownloads)
	if h.metrics != nil {
		h.metrics.AddPacingSeries(len(chart.Series))
	}
	h.logger.Debug("Computed pacing chart",
		"episodes", len(body.Episodes),
		"series", len(chart.Series),
		"hours", len(chart.Hours),
	)
	writeJSON(w, http.StatusOK, chart, h.logger)
}

func (h *Handler) selectStore(replica bool) (blobs.Store, error) {
	if !replica {
		return h.stores.Primary, nil
	}
	if h.stores.Replica == nil {
		return nil, fmt.Errorf("read-only replica: %w", errors.ErrStoreNotConfigured)
	}
	return h.stores.Replica, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		h.logger.Debug("Request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, err.Error(), h.logger)
}

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.IsBadRequest(err):
		return http.StatusBadRequest
	case stderrors.Is(err, errors.ErrStoreNotConfigured):
		return http.StatusInternalServerError
	case errors.IsRetryable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
