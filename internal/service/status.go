package service

import (
	"errors"
	"net/http"

	"surveyd/internal/storage"
	"surveyd/internal/survey"
)

// Record statuses. Every record in a batch is evaluated independently; one
// record's fatal error never blocks another record's success.
const (
	StatusCreated    = "created"
	StatusOK         = "ok"
	StatusBadRequest = "bad_request"
	StatusNotFound   = "not_found"
	StatusConflict   = "conflict"
	StatusError      = "error"
)

// RecordStatus is the per-record outcome of a batch operation.
type RecordStatus struct {
	Status    string              `json:"status"`
	Code      int                 `json:"code"`
	ChosenID  string              `json:"chosenID,omitempty"`
	WellID    string              `json:"wellID,omitempty"`
	RecordID  string              `json:"recordID,omitempty"`
	Message   string              `json:"message,omitempty"`
	Errors    []survey.FieldError `json:"errors,omitempty"`
	Conflicts []survey.Conflict   `json:"conflicts,omitempty"`
}

var statusCodes = map[string]int{
	StatusCreated:    http.StatusCreated,
	StatusOK:         http.StatusOK,
	StatusBadRequest: http.StatusBadRequest,
	StatusNotFound:   http.StatusNotFound,
	StatusConflict:   http.StatusConflict,
	StatusError:      http.StatusInternalServerError,
}

func recordStatus(status, chosenID, wellID, message string) RecordStatus {
	return RecordStatus{
		Status:   status,
		Code:     statusCodes[status],
		ChosenID: chosenID,
		WellID:   wellID,
		Message:  message,
	}
}

func badRequest(chosenID string, errs []survey.FieldError) RecordStatus {
	st := recordStatus(StatusBadRequest, chosenID, "", "")
	st.Errors = errs
	return st
}

func conflictStatus(chosenID, wellID string, conflicts []survey.Conflict) RecordStatus {
	st := recordStatus(StatusConflict, chosenID, wellID, "")
	st.Conflicts = conflicts
	return st
}

func internalError(chosenID, wellID string, err error) RecordStatus {
	return recordStatus(StatusError, chosenID, wellID, "unexpected error: "+err.Error())
}

// wellResolutionStatus maps well lookup failures. These are fatal to the
// record and distinct from merge conflicts: no merge was attempted.
func wellResolutionStatus(chosenID string, err error) RecordStatus {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return recordStatus(StatusNotFound, chosenID, "", "no well found")
	case errors.Is(err, storage.ErrAmbiguousWell):
		return recordStatus(StatusBadRequest, chosenID, "", "more than one well found")
	default:
		return internalError(chosenID, "", err)
	}
}
