package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/duoplan/internal/repository"
	"github.com/templui/duoplan/internal/service"
	"github.com/templui/duoplan/internal/validation"
	"github.com/templui/duoplan/internal/week"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []*validation.Error `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// handleServiceError maps domain errors to HTTP statuses. Unexpected errors are
// logged with the given attributes and returned as 500.
func handleServiceError(w http.ResponseWriter, err error, msg string, attrs ...any) {
	var fieldErr *validation.Error
	var fieldErrs validation.Errors

	switch {
	case errors.As(err, &fieldErrs):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: fieldErrs})
	case errors.As(err, &fieldErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: []*validation.Error{fieldErr}})
	case errors.Is(err, week.ErrInvalidFormat), errors.Is(err, service.ErrInvalidSyncPayload):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrForbiddenPartnerMutation), errors.Is(err, service.ErrForbiddenCrossOwnerLink):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, repository.ErrGoalNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrGoalLimitReached), errors.Is(err, service.ErrGoalInactive):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrExportStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		slog.Error(msg, append([]any{"error", err}, attrs...)...)
		writeError(w, http.StatusInternalServerError, msg)
	}
}
