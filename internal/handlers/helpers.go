package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/benvon/board-insights/internal/logger"
)

// maxErrorMessageLength caps error text exposed by the HTTP endpoints
const maxErrorMessageLength = 200

// writeJSON sends a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage truncates error text before it is exposed
func sanitizeErrorMessage(message string) string {
	return logger.SanitizeString(message, maxErrorMessageLength)
}
