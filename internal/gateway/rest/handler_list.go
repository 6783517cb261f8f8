package rest

import (
	"net/http"
	"strconv"
)

// handleList serves paginated survey lists. GET returns a page with a Link
// header; HEAD answers with the total count in X-Query-Count and a Link
// header that includes last, computed from that count.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	q, err := listQuery(params)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	if r.Method == http.MethodHead {
		total, err := h.service.Count(r.Context(), q)
		if err != nil {
			writeInternalError(w, err, "Failed to count surveys")
			return
		}

		hasNext := int64(params.Skip+params.Take) < total
		setLinkHeader(w, r, params, hasNext, "", total)
		w.Header().Set("X-Query-Count", strconv.FormatInt(total, 10))
		w.WriteHeader(http.StatusOK)
		return
	}

	records, err := h.service.List(r.Context(), q)
	if err != nil {
		writeInternalError(w, err, "Failed to list surveys")
		return
	}

	// One extra row was fetched to decide hasNext without a count query.
	hasNext := len(records) > params.Take
	if hasNext {
		records = records[:params.Take]
	}

	lastID := ""
	if len(records) > 0 {
		lastID = records[len(records)-1].ID
	}
	setLinkHeader(w, r, params, hasNext, lastID, -1)

	resp := ListResponse{Data: make([]SurveyResponse, len(records))}
	for i, rec := range records {
		resp.Data[i] = toSurveyResponse(rec)
	}
	writeJSON(w, http.StatusOK, resp)
}
