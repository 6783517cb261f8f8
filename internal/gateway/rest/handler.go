package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"surveyd/internal/service"
	"surveyd/internal/storage"
	"surveyd/internal/survey"
)

// Default body size limit for write operations.
const DefaultMaxBodySize = 10 << 20 // 10MB; survey payloads carry full column sets

// Default request timeout.
const DefaultRequestTimeout = 30 * time.Second

// APIError represents a structured error response.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error codes.
const (
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// SurveyService is the slice of the survey service the REST layer uses.
type SurveyService interface {
	Create(ctx context.Context, p survey.Payload) service.RecordStatus
	Update(ctx context.Context, ref service.WellRef, p service.UpdatePayload) service.RecordStatus
	DeleteByWell(ctx context.Context, wellID string) (int64, error)
	Get(ctx context.Context, wellID string) (*storage.SurveyRecord, error)
	List(ctx context.Context, q storage.ListQuery) ([]*storage.SurveyRecord, error)
	Count(ctx context.Context, q storage.ListQuery) (int64, error)
}

// Handler serves the survey REST API.
type Handler struct {
	service SurveyService
}

// NewHandler creates a Handler over the survey service.
func NewHandler(svc SurveyService) *Handler {
	if svc == nil {
		panic("survey service cannot be nil")
	}
	return &Handler{service: svc}
}

// RegisterRoutes registers all survey routes on the mux. Request ID and panic
// recovery are handled by the unified server middleware.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/surveys", withTimeout(maxBodySize(h.handleCreate, DefaultMaxBodySize), DefaultRequestTimeout))
	mux.HandleFunc("GET /api/v1/surveys", withTimeout(h.handleList, DefaultRequestTimeout))
	mux.HandleFunc("GET /api/v1/surveys/{well}", withTimeout(h.handleGet, DefaultRequestTimeout))
	mux.HandleFunc("PUT /api/v1/surveys/{well}", withTimeout(maxBodySize(h.handleUpdate, DefaultMaxBodySize), DefaultRequestTimeout))
	mux.HandleFunc("DELETE /api/v1/surveys/{well}", withTimeout(h.handleDelete, DefaultRequestTimeout))

	mux.HandleFunc("GET /health", withTimeout(h.handleHealth, 5*time.Second))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(APIError{Code: code, Message: message}); err != nil {
		slog.Warn("Failed to encode error response", "error", err)
	}
}

// writeInternalError writes an internal error response, but first checks if
// the error is due to client cancellation (returns 499 instead of 500).
func writeInternalError(w http.ResponseWriter, err error, message string) {
	if storage.IsCanceled(err) {
		w.WriteHeader(499) // Client Closed Request
		return
	}
	slog.Error(message, "error", err)
	writeError(w, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// writeStorageError writes an appropriate error response for storage errors.
func writeStorageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "Survey not found")
	case errors.Is(err, storage.ErrAmbiguousWell):
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "More than one well found")
	default:
		writeInternalError(w, err, "Internal storage error")
	}
}

// writeJSON writes a JSON response with proper error handling.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("Failed to encode JSON response", "error", err)
	}
}

// maxBodySize wraps a handler with request body size limiting.
func maxBodySize(next http.HandlerFunc, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		next(w, r)
	}
}

// withTimeout wraps a handler with a context timeout.
func withTimeout(next http.HandlerFunc, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}
