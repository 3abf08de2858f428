// Package handlers provides shared HTTP response and request helpers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// RespondJSON writes data as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// RespondError writes an error as a JSON response with the given status
// code and logs it. The body shape is {"error": "<message>"}.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	logger.Error("request failed", "status", status, "error", err)
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}
