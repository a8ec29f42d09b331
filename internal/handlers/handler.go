package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/upprop/internal/app"
	"github.com/shrimpsizemoose/upprop/internal/metrics"
	"github.com/shrimpsizemoose/upprop/internal/roster"
)

type RosterHandler struct {
	service *app.Service
}

func NewRosterHandler(service *app.Service) *RosterHandler {
	return &RosterHandler{
		service: service,
	}
}

// statusRecorder remembers the code written by the handler so the duration
// metric can carry it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Instrument wraps a handler with per-request logging and timing. The
// request id groups log lines for one call.
func (h *RosterHandler) Instrument(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		logger.Debug.Printf("[%s] %s %s", reqID, r.Method, r.URL.Path)
		next(rec, r)

		duration := time.Since(start).Seconds()
		metrics.APIRequestDuration.WithLabelValues(
			r.URL.Path,
			r.Method,
			strconv.Itoa(rec.status),
		).Observe(duration)
		logger.Debug.Printf("[%s] done in %.3fs with %d", reqID, duration, rec.status)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload map[string]interface{}) {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	if _, ok := payload["success"]; !ok {
		payload["success"] = status < http.StatusBadRequest
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Debug.Printf("Error encoding response: %v", err)
	}
}

// writeError maps the service error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, roster.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, roster.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, roster.ErrInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, roster.ErrSessionClosed), errors.Is(err, roster.ErrDuplicateID):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		logger.Error.Printf("request failed: %v", err)
	}

	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   err.Error(),
	})
}

// actor gates every endpoint: shared secret headers first, then the actor
// identity. A nil error means the request may proceed.
func (h *RosterHandler) actor(w http.ResponseWriter, r *http.Request) (roster.Actor, bool) {
	if !h.service.ValidateHeaders(r.Header) {
		writeJSON(w, http.StatusForbidden, map[string]interface{}{
			"success": false,
			"error":   "these are not the droids you are looking for",
		})
		return roster.Actor{}, false
	}

	actor, err := h.service.ResolveActor(r)
	if err != nil {
		logger.Debug.Printf("actor resolution failed: %v", err)
		writeJSON(w, http.StatusForbidden, map[string]interface{}{
			"success": false,
			"error":   "unauthorized",
		})
		return roster.Actor{}, false
	}
	return actor, true
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("bad id in path: " + raw)
	}
	return id, nil
}
