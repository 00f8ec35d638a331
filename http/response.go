package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/assetgate"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// WriteError writes a JSON error response. An empty detail is omitted.
func WriteError(w http.ResponseWriter, code int, errCode, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:  errCode,
		Detail: detail,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// WriteUnauthorized writes the 401 response shared by every auth failure.
func WriteUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	WriteError(w, http.StatusUnauthorized, "unauthorized", "")
}

// HandleError writes appropriate error response based on error type
func HandleError(w http.ResponseWriter, err error) {
	var sanitizeErr *assetgate.SanitizeError
	switch {
	case errors.As(err, &sanitizeErr):
		WriteError(w, http.StatusBadRequest, "invalid_filename", sanitizeErr.Reason)
	case errors.Is(err, assetgate.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "")
	case errors.Is(err, assetgate.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
	case errors.Is(err, assetgate.ErrUnauthorized):
		WriteUnauthorized(w)
	default:
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
