package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setcast/internal/repositories"
	"github.com/desertthunder/setcast/internal/status"
)

// StatusHandler serves read-only upload status and history endpoints.
// Implements the Handler interface for registration with a Router.
type StatusHandler struct {
	store   *status.Store
	history *repositories.UploadRepository
	logger  *log.Logger
}

// NewStatusHandler creates a StatusHandler. History may be nil, in which
// case the /uploads endpoint reports service unavailable.
func NewStatusHandler(store *status.Store, history *repositories.UploadRepository, logger *log.Logger) *StatusHandler {
	return &StatusHandler{store: store, history: history, logger: logger}
}

// Routes returns the path patterns this handler serves.
func (h *StatusHandler) Routes() []string {
	return []string{"/healthz", "/status/", "/uploads"}
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch {
	case r.URL.Path == "/healthz":
		h.health(w)
	case strings.HasPrefix(r.URL.Path, "/status/"):
		h.uploadStatus(w, r)
	case r.URL.Path == "/uploads":
		h.uploads(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *StatusHandler) health(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *StatusHandler) uploadStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/status/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	record, err := h.store.Read(id)
	if err != nil {
		if errors.Is(err, status.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "upload not found"})
			return
		}
		h.logger.Error("status read failed", "upload_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read status"})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *StatusHandler) uploads(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "upload history is not configured"})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	rows, err := h.history.List(limit)
	if err != nil {
		h.logger.Error("history list failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list uploads"})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Logging returns middleware that logs each request's method, path,
// and duration.
func Logging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Info("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		})
	}
}
