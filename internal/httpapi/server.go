// Package httpapi exposes the pipeline over HTTP: event intake, recency
// and filter queries, and the websocket live stream.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"agentsight/internal/bootstrap/logging"
	"agentsight/internal/domain/event"
	"agentsight/internal/errs"
	"agentsight/internal/stream"
	"agentsight/internal/usecase/ingest"
)

// EventService is the ingestion/query surface the handlers need.
type EventService interface {
	IngestEvent(ctx context.Context, in ingest.IngestEventInput) (event.Event, error)
	RecentEvents(ctx context.Context, limit int) ([]event.Event, error)
	FilterOptions(ctx context.Context) (event.FilterOptions, error)
}

type Handler struct {
	svc EventService
	hub *stream.Hub
}

func NewHandler(svc EventService, hub *stream.Hub) *Handler {
	return &Handler{svc: svc, hub: hub}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/events", h.handleIngest)
	r.Get("/events/recent", h.handleRecent)
	r.Get("/events/filter-options", h.handleFilterOptions)
	r.Get("/stream", h.handleStream)
	return r
}

// eventRequest is the intake body. timestamp is Unix milliseconds. The
// emitters may attach a chat transcript; this pipeline accepts and drops
// it (a separate collaborator owns that column).
type eventRequest struct {
	SourceApp     string          `json:"source_app"`
	SessionID     string          `json:"session_id"`
	HookEventType string          `json:"hook_event_type"`
	Payload       json.RawMessage `json:"payload"`
	Summary       string          `json:"summary"`
	Timestamp     int64           `json:"timestamp"`
	Chat          json.RawMessage `json:"chat"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	stored, err := h.svc.IngestEvent(r.Context(), ingest.IngestEventInput{
		Submission: event.Submission{
			SourceApp:     req.SourceApp,
			SessionID:     req.SessionID,
			HookEventType: req.HookEventType,
			Payload:       req.Payload,
			Summary:       req.Summary,
			Timestamp:     req.Timestamp,
		},
		Summarize: r.URL.Query().Get("summarize") == "true",
	})
	if err != nil {
		if errors.Is(err, event.ErrInvalidSubmission) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logging.Error(r.Context(), "event ingest failed", slog.Any("err", errs.Loggable(err)))
		writeError(w, http.StatusInternalServerError, "failed to persist event")
		return
	}

	writeJSON(w, http.StatusOK, stored)
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	events, err := h.svc.RecentEvents(r.Context(), limit)
	if err != nil {
		logging.Error(r.Context(), "recent events query failed", slog.Any("err", errs.Loggable(err)))
		writeError(w, http.StatusInternalServerError, "failed to query events")
		return
	}
	if events == nil {
		events = []event.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) handleFilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.svc.FilterOptions(r.Context())
	if err != nil {
		logging.Error(r.Context(), "filter options query failed", slog.Any("err", errs.Loggable(err)))
		writeError(w, http.StatusInternalServerError, "failed to query filter options")
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
