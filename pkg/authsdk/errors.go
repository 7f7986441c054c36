package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is the error shape the service returns for every failure. It is
// shared between the server (to write responses) and the SDK client (to
// surface them as Go errors).
type APIError struct {
	// StatusCode is the HTTP status code for this error.
	StatusCode int `json:"-"`

	// Message is the human-readable failure description.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(MessageResponse{
		Success: false,
		Message: e.Message,
	})
}

var (
	// ErrBadRequest is returned when the request body cannot be parsed or
	// misses required fields.
	ErrBadRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Message:    "Invalid request",
	}

	// ErrUnauthorized is returned when no valid session or token accompanies
	// a protected request.
	ErrUnauthorized = &APIError{
		StatusCode: http.StatusUnauthorized,
		Message:    "Authentication required",
	}

	// ErrForbidden is returned when the caller is authenticated but lacks
	// the admin capability the endpoint needs.
	ErrForbidden = &APIError{
		StatusCode: http.StatusForbidden,
		Message:    "Admin access required",
	}

	// ErrServerError is returned for unexpected internal failures.
	ErrServerError = &APIError{
		StatusCode: http.StatusInternalServerError,
		Message:    "Internal server error",
	}
)
