package server

import (
	"encoding/json"
	"net/http"

	"resona/apperr"
	"resona/logger"
)

// envelope is the uniform response shape: success plus either a data
// payload or an error message with optional field details.
type envelope struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Error   string            `json:"error,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", logger.ErrorField(err))
	}
}

// respondData writes a successful response carrying a payload.
func respondData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// respondMessage writes a successful response carrying only a message.
func respondMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: true, Message: message})
}

// respondError maps an error onto the envelope. Known API errors keep
// their status and message; anything else becomes an opaque 500 and the
// cause is logged.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	if apiErr, ok := apperr.As(err); ok {
		writeJSON(w, apiErr.Status, envelope{
			Success: false,
			Error:   apiErr.Message,
			Errors:  apiErr.Fields,
		})
		return
	}

	logger.Error("Request failed",
		logger.String("method", r.Method),
		logger.String("path", r.URL.Path),
		logger.ErrorField(err))
	writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Error: "Internal server error"})
}

// respondUnauthorized is the 401 for missing or expired sessions.
func respondUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Error: "Authentication required"})
}
