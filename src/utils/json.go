package utils

import (
	"encoding/json"
	"net/http"

	"github.com/username/networth/backend/src/logger"
)

// JSONErrorResponse is the uniform error body every handler returns.
type JSONErrorResponse struct {
	Error string `json:"error"`
}

// SendJSON writes a JSON response with the given status code.
func SendJSON(w http.ResponseWriter, payload any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.L.Error("Failed to encode JSON response", "error", err)
	}
}

// SendJSONError writes a JSON error body with the given status code.
func SendJSONError(w http.ResponseWriter, message string, statusCode int) {
	SendJSON(w, JSONErrorResponse{Error: message}, statusCode)
}
