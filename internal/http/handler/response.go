package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

var fallbackErrorBody = []byte(`{"statusCode":500,"error":"Internal Server Error","message":"An unexpected error occurred."}`)

// writeJSON marshals body before touching the response so an encoding failure still yields a valid reply.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		logger.Error("failed to marshal JSON response", "error", err)
		payload = fallbackErrorBody
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		logger.Error("failed to write JSON response", "error", err)
	}
}

// messageResponse is the body of every domain error reply.
type messageResponse struct {
	Message string `json:"message"`
}

// errorResponse is the body of validation failures and unexpected errors.
type errorResponse struct {
	StatusCode int           `json:"statusCode"`
	Error      string        `json:"error"`
	Message    string        `json:"message"`
	Details    []FieldDetail `json:"details,omitempty"`
}
