package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/servicelog/internal/domain"
)

// successEnvelope wraps every successful API response.
type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// failureEnvelope is the body of every error response.
type failureEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, successEnvelope{Success: true, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, failureEnvelope{Success: false, Message: message})
}

// writeError maps err onto a status code and failure envelope. Only
// validation messages reach the client verbatim; 500s are logged with the
// full chain and answered with a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	var comp *domain.CompensationError

	switch {
	case errors.As(err, &tooLarge):
		writeFailure(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, domain.ErrValidation):
		writeFailure(w, http.StatusBadRequest, unwrapMessage(err))
	case errors.Is(err, domain.ErrUnauthorized):
		writeFailure(w, http.StatusUnauthorized, "missing or invalid bearer token")
	case errors.Is(err, domain.ErrForbidden):
		writeFailure(w, http.StatusForbidden, "you may not access this service")
	case errors.Is(err, domain.ErrNotFound):
		writeFailure(w, http.StatusNotFound, "service not found")
	case errors.Is(err, domain.ErrMethodNotAllowed):
		writeFailure(w, http.StatusMethodNotAllowed, "method not allowed")
	default:
		attrs := []any{"method", r.Method, "path", r.URL.Path, "error", err.Error()}
		if errors.As(err, &comp) {
			attrs = append(attrs, "orphan_service_id", comp.ServiceID)
		}
		s.log.ErrorContext(r.Context(), "request failed", attrs...)
		writeFailure(w, http.StatusInternalServerError, "internal server error")
	}
}

// unwrapMessage extracts the human-readable part from a wrapped validation error.
// e.g. "service.AggregateService.Update: validation error: nothing to update" → "nothing to update"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if _, rest, ok := strings.Cut(msg, domain.ErrValidation.Error()+": "); ok && rest != "" {
		return rest
	}
	return msg
}
