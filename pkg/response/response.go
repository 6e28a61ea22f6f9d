// Package response writes the JSON envelopes every endpoint answers with.
//
//	success: {"success": true, ...payload}
//	error:   {"success": false, "message": "...", "statusCode": 404}
package response

import (
	"encoding/json"
	"net/http"
)

// Payload is the body of a success response. Its keys sit next to "success".
type Payload map[string]interface{}

type errorEnvelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	StatusCode int               `json:"statusCode"`
	Errors     map[string]string `json:"errors,omitempty"`
}

func write(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// JSON sends {"success": true, ...payload} with status.
func JSON(w http.ResponseWriter, status int, payload Payload) {
	body := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = true
	write(w, status, body)
}

// Success sends a 200 success envelope.
func Success(w http.ResponseWriter, payload Payload) {
	JSON(w, http.StatusOK, payload)
}

// Created sends a 201 success envelope.
func Created(w http.ResponseWriter, payload Payload) {
	JSON(w, http.StatusCreated, payload)
}

// Error sends the error envelope.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, errorEnvelope{Message: message, StatusCode: status})
}

// ValidationError sends a 400 with a field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusBadRequest, errorEnvelope{
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Errors:     errs,
	})
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "You are not allowed to access this resource")
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not found")
}
