package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"surveyd/internal/service"
	"surveyd/internal/storage"
)

// handleCreate registers one or more survey records. A JSON array body is a
// batch; every record is evaluated independently and the response is a
// multi-status array. A single object gets its record's own status code.
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Failed to read request body")
		return
	}

	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Request body is required")
		return
	}

	if trimmed[0] == '[' {
		var reqs []CreateSurveyRequest
		if err := json.Unmarshal(body, &reqs); err != nil {
			writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid request body")
			return
		}

		statuses := make([]service.RecordStatus, len(reqs))
		for i, req := range reqs {
			statuses[i] = h.service.Create(r.Context(), req.Payload())
		}

		slog.Info("Create: batch completed", "records", len(statuses))
		writeJSON(w, http.StatusMultiStatus, statuses)
		return
	}

	var req CreateSurveyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid request body")
		return
	}

	status := h.service.Create(r.Context(), req.Payload())
	writeJSON(w, status.Code, status)
}

// handleUpdate applies add/update/remove sub-payloads to the well's record.
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	wellID := r.PathValue("well")
	if wellID == "" {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Well is required")
		return
	}

	var req UpdateSurveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid request body")
		return
	}

	if req.Add == nil && req.Update == nil && len(req.Remove) == 0 {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "At least one of add, update, or remove is required")
		return
	}

	status := h.service.Update(r.Context(), service.WellRef{WellID: wellID}, service.UpdatePayload{
		DataSource:      req.DataSource,
		SpatialDataType: req.SpatialDataType,
		Add:             req.Add,
		Update:          req.Update,
		Remove:          req.Remove,
	})
	writeJSON(w, status.Code, status)
}

// handleDelete removes the well's survey via the downstream import service.
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	wellID := r.PathValue("well")
	if wellID == "" {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Well is required")
		return
	}

	deleted, err := h.service.DeleteByWell(r.Context(), wellID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, ErrCodeNotFound, "Survey not found")
			return
		}
		writeInternalError(w, err, "Failed to delete survey")
		return
	}

	writeJSON(w, http.StatusOK, DeleteResponse{Updated: deleted})
}

// handleGet returns the well's active record.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	wellID := r.PathValue("well")
	if wellID == "" {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Well is required")
		return
	}

	rec, err := h.service.Get(r.Context(), wellID)
	if err != nil {
		writeStorageError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSurveyResponse(rec))
}

func toSurveyResponse(rec *storage.SurveyRecord) SurveyResponse {
	return SurveyResponse{
		ID:              rec.ID,
		WellID:          rec.WellID,
		ChosenID:        rec.ChosenID,
		DataSource:      rec.DataSource,
		SpatialDataType: rec.SpatialDataType,
		ProjectID:       rec.ProjectID,
		MeasurementSet:  rec.Measurements,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}
