package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"arms-backoffice/internal/core"
)

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorEnvelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeJSON writes a success envelope with the given status.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(successEnvelope{Success: true, Data: data})
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Message:   message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	})
}

// statusForError maps the core error taxonomy onto an HTTP status and
// machine code. Anything untyped is a storage or programming failure and
// stays a 500 with a generic message.
func statusForError(err error) (int, string, string) {
	var (
		validationErr *core.ValidationError
		notFoundErr   *core.NotFoundError
		conflictErr   *core.ConflictError
		configErr     *core.ConfigurationError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, "VALIDATION_ERROR", validationErr.Message
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, "NOT_FOUND", notFoundErr.Message
	case errors.As(err, &conflictErr):
		return http.StatusConflict, "CONFLICT", conflictErr.Message
	case errors.As(err, &configErr):
		return http.StatusInternalServerError, "CONFIGURATION_ERROR", configErr.Message
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
	}
}
