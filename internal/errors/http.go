// Package errors defines the JSON error envelope returned by the HTTP
// surface. Every non-2xx response carries one of these so clients can
// switch on a stable code instead of parsing messages.
package errors

import (
	"encoding/json"
	"net/http"
)

// Stable error codes for the HTTP surface.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeInvalidArgument    = "INVALID_ARGUMENT"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL"
)

// HTTPError is the inner error object of an HTTPErrorResponse.
type HTTPError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// HTTPErrorResponse is the envelope written for every error response.
type HTTPErrorResponse struct {
	Error HTTPError `json:"error"`
}

// WriteHTTPError writes the standard error envelope with the given
// status, code, and message.
func WriteHTTPError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(HTTPErrorResponse{
		Error: HTTPError{Code: code, Message: message},
	})
}
