package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// badRequest rejects a request before it reaches the service layer
// (malformed body or path/query parameter).
func badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "bad_request", message)
}

// writeServiceError maps an error returned by a service to an HTTP response.
// Unexpected errors are logged and reported as 500 without detail.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrStopNotFound):
		writeError(w, http.StatusNotFound, "not_found", "stop not found")
	case errors.Is(err, domain.ErrActivityNotSelected):
		writeError(w, http.StatusNotFound, "not_found", "activity not selected")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "draft not found")
	case errors.Is(err, domain.ErrEndDateRequired):
		writeError(w, http.StatusUnprocessableEntity, "end_date_required", unwrapMessage(err))
	case errors.Is(err, domain.ErrPastStartDate):
		writeError(w, http.StatusUnprocessableEntity, "past_start_date", unwrapMessage(err))
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err))
	case errors.Is(err, domain.ErrLastStop):
		writeError(w, http.StatusConflict, "last_stop", unwrapMessage(err))
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", unwrapMessage(err))
	default:
		s.log.ErrorContext(r.Context(), "unhandled service error",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "service.DraftService.AppendStop: validation error: please choose …"
// becomes "please choose …".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, marker := range []string{"validation error: ", "conflict: "} {
		if i := strings.LastIndex(msg, marker); i >= 0 && i+len(marker) < len(msg) {
			return msg[i+len(marker):]
		}
	}
	return msg
}
