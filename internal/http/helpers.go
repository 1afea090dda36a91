package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"budget/internal/core"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
	SQL   string `json:"sql,omitempty"`
}

// writeError maps the error taxonomy onto HTTP status codes. A rejected
// ad-hoc query echoes the offending text for diagnostics.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *core.ValidationError
		re *core.ReferenceError
		se *core.SecurityError
		st *core.StorageError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Error()})
	case errors.As(err, &re):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: re.Error()})
	case errors.As(err, &se):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: se.Error(), SQL: se.Query})
	case errors.As(err, &st):
		slog.ErrorContext(r.Context(), "Storage failure", "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "storage failure"})
	default:
		slog.ErrorContext(r.Context(), "Unexpected failure", "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// decodeBody decodes a JSON request body, rejecting unknown garbage early.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return &core.ValidationError{Field: "body", Reason: "must be valid JSON"}
	}
	return nil
}
