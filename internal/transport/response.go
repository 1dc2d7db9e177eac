package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"workshop-backend/internal/apperr"
)

// ErrorResponse is the failure half of the {success, message} envelope.
type ErrorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Error   string            `json:"error,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteSuccess merges success/message into fields and writes a 2xx payload.
func WriteSuccess(w http.ResponseWriter, status int, message string, fields map[string]interface{}) {
	payload := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		payload[k] = v
	}
	payload["success"] = true
	payload["message"] = message
	WriteJSON(w, status, payload)
}

func WriteError(w http.ResponseWriter, status int, message string, details map[string]string) {
	WriteJSON(w, status, ErrorResponse{
		Success: false,
		Message: message,
		Details: details,
	})
}

// WriteAppError maps a classified error to its status code and envelope.
func WriteAppError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	var details map[string]string
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Field != "" {
		details = map[string]string{appErr.Field: appErr.Message}
	}
	WriteJSON(w, apperr.HTTPStatus(kind), ErrorResponse{
		Success: false,
		Message: apperr.MessageOf(err),
		Error:   string(kind),
		Details: details,
	})
}
