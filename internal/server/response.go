package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// requestID generates a unique request identifier.
func requestID() string {
	return "req_" + uuid.New().String()[:8]
}

// envelope wraps every JSON response of the host endpoints.
type envelope struct {
	Status    string    `json:"status"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// respondOK writes a success response with the standard envelope.
func respondOK(w http.ResponseWriter, reqID string, data any) {
	respondJSON(w, http.StatusOK, envelope{Status: "ok", RequestID: reqID, Data: data})
}

// respondError writes an error response with the standard envelope. data
// may carry details such as the failing dependency.
func respondError(w http.ResponseWriter, reqID string, status int, message string, data any) {
	respondJSON(w, status, envelope{Status: "error", RequestID: reqID, Data: data, Error: message})
}

func respondJSON(w http.ResponseWriter, status int, env envelope) {
	env.Timestamp = time.Now().UTC()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}
