package handlers

import (
	"encoding/json"
	"net/http"

	"photo-gallery-backend/internal/apperr"
)

// Envelope is the JSON response shape used by every endpoint.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// respondData sends a success envelope with a payload
func respondData(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Envelope{Success: true, Data: data})
}

// respondMessage sends a success envelope with a message only
func respondMessage(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Envelope{Success: true, Message: message})
}

// respondAppError maps a service error to its status code and client-safe
// message. Untyped errors come out as a generic 500.
func respondAppError(w http.ResponseWriter, err error) {
	respondError(w, apperr.Message(err), apperr.Status(err))
}

// respondError sends a failure envelope
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Envelope{Success: false, Message: message})
}
