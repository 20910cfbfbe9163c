package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jittakal/podstats/internal/query"
	"github.com/jittakal/podstats/pkg/download"
)

// TSVContentType is the media type of tsv query responses.
const TSVContentType = "text/tab-separated-values; charset=utf-8"

const startTimeLayout = "2006-01-02T15:04:05.000Z"

// Envelope fields carried as headers on tsv responses.
const (
	HeaderStartTime = "X-Query-Start-Time"
	HeaderFormat    = "X-Query-Format"
)

// QueryResponse is the JSON envelope of a download query.
type QueryResponse struct {
	StartTime string   `json:"startTime"`
	Format    string   `json:"format"`
	Headers   []string `json:"headers"`
	Rows      []any    `json:"rows"`
	QueryTime int64    `json:"queryTime"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Message string `json:"message"`
}

func newQueryResponse(result *query.Result, now time.Time) QueryResponse {
	rows := result.Rows
	if rows == nil {
		rows = []any{}
	}
	return QueryResponse{
		StartTime: result.StartTime.UTC().Format(startTimeLayout),
		Format:    string(result.Format),
		Headers:   result.Headers,
		Rows:      rows,
		QueryTime: now.Sub(result.StartTime).Milliseconds(),
	}
}

// writeResult encodes result in its negotiated format.
func writeResult(w http.ResponseWriter, result *query.Result, logger *slog.Logger) {
	if result.Format == download.FormatTSV {
		writeTSV(w, result, logger)
		return
	}
	writeJSON(w, http.StatusOK, newQueryResponse(result, time.Now()), logger)
}

func writeTSV(w http.ResponseWriter, result *query.Result, logger *slog.Logger) {
	var b strings.Builder
	b.WriteString(strings.Join(result.Headers, "\t"))
	b.WriteByte('\n')
	for _, row := range result.Rows {
		switch r := row.(type) {
		case string:
			b.WriteString(r)
		case download.Event:
			b.WriteString(r.TSV())
		case []string:
			b.WriteString(strings.Join(r, "\t"))
		}
		b.WriteByte('\n')
	}

	w.Header().Set("Content-Type", TSVContentType)
	w.Header().Set(HeaderStartTime, result.StartTime.UTC().Format(startTimeLayout))
	w.Header().Set(HeaderFormat, string(result.Format))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(b.String())); err != nil {
		logger.Error("failed to write tsv response", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	writeJSON(w, status, ErrorResponse{Message: message}, logger)
}
