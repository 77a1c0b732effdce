package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/craftora/marketplace/internal/service/models/apperror"
)

type errorInfo struct {
	StatusCode int `json:"statusCode"`
}

type errorEnvelope struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Error   errorInfo `json:"error"`
}

// JSON writes v as the JSON response body.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// Error serializes a domain error into the envelope every endpoint uses.
// Unrecognized errors become a plain 500 without leaking internals.
func Error(w http.ResponseWriter, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		slog.Error("Unhandled error reached the HTTP boundary", "error", err)
		appErr = &apperror.Error{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
		}
	}

	JSON(w, appErr.StatusCode, errorEnvelope{
		Success: false,
		Message: appErr.Message,
		Error:   errorInfo{StatusCode: appErr.StatusCode},
	})
}
