package httputil

import (
	"encoding/json"
	"net/http"
)

// Error codes matching the API error taxonomy
const (
	ErrCodeValidation  = "VALIDATION_ERROR"
	ErrCodeConflict    = "CONFLICT"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden   = "FORBIDDEN"
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeStorage     = "STORAGE_ERROR"
	ErrCodeRateLimited = "RATE_LIMITED"
	ErrCodeInternal    = "INTERNAL_ERROR"
)

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error code and message
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers already sent; nothing left to do
			return
		}
	}
}

// WriteError writes an error response in the form:
// {"error": {"code": "ERROR_CODE", "message": "Human readable message"}}
func WriteError(w http.ResponseWriter, status int, code string, message string) {
	WriteJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// WriteValidationError writes a 400 for malformed or missing input
func WriteValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, ErrCodeValidation, message)
}

// WriteConflict writes a uniqueness violation. The status is 400, matching
// the rest of the client-visible validation surface; the CONFLICT code keeps
// the case distinguishable.
func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, ErrCodeConflict, message)
}

// WriteUnauthorized writes a 401 Unauthorized error
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// WriteForbidden writes a 403 Forbidden error
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

// WriteForbiddenWithCode writes a 403 with a custom code
func WriteForbiddenWithCode(w http.ResponseWriter, code string, message string) {
	WriteError(w, http.StatusForbidden, code, message)
}

// WriteNotFound writes a 404 Not Found error
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// WriteStorageError writes a 500 for media persistence failures
func WriteStorageError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, ErrCodeStorage, message)
}

// WriteRateLimited writes a 429 Too Many Requests error
func WriteRateLimited(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, ErrCodeRateLimited, message)
}

// WriteInternalError writes a 500 Internal Server Error
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}
