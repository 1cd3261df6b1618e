package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// Request error codes carried in APIError.ErrorCode
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeValidationFailed     = "VALIDATION_FAILED"
	CodePayloadTooLarge      = "PAYLOAD_TOO_LARGE"
	CodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
)

// APIError is a request-level failure: the query or body was wrong before
// any dataset work started. Domain failures use AppError instead.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Details)
	}
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// InvalidRequestWithError reports a query string or body that could not be decoded
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// FieldError names one request field that failed validation
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors lists every failing field of a request
type ValidationErrors struct {
	Errors []FieldError `json:"errors"`
}

// NewValidationErrors creates a 400 listing each failing field
func NewValidationErrors(errs []FieldError) *APIError {
	return NewWithDetails(
		http.StatusBadRequest,
		CodeValidationFailed,
		"Request validation failed",
		ValidationErrors{Errors: errs},
	)
}

// PayloadTooLarge reports a body over the configured limit
func PayloadTooLarge(limit, size int64) *APIError {
	return NewWithDetails(
		http.StatusRequestEntityTooLarge,
		CodePayloadTooLarge,
		"Request body exceeds maximum allowed size",
		map[string]interface{}{"max_size": limit, "size": size},
	)
}

// UnsupportedMediaType reports a Content-Type outside allowed
func UnsupportedMediaType(contentType string, allowed []string) *APIError {
	return NewWithDetails(
		http.StatusUnsupportedMediaType,
		CodeUnsupportedMediaType,
		"Unsupported content type",
		map[string]interface{}{"content_type": contentType, "allowed": allowed},
	)
}
