package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Standardized APIError response
type APIError struct {
	StatusCode int    `json:"-"`              // HTTP status code, not included in JSON response body for error itself
	Code       string `json:"code,omitempty"` // Application-specific error code
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
}

// NewAPIError creates a new APIError instance
func NewAPIError(statusCode int, code string, message string, details string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Details:    details,
	}
}

func (e *APIError) Error() string {
	return e.Message
}

// RespondWithError sends a standardized JSON error response.
// The top-level message mirrors the error message so clients can show it directly.
func RespondWithError(c *gin.Context, err *APIError) {
	c.JSON(err.StatusCode, gin.H{
		"success": false,
		"message": err.Message,
		"error":   err,
	})
	c.Abort() // Abort further processing if it's a middleware or critical error
}

// RespondWithSuccess writes the success envelope with the payload keys at the top level.
func RespondWithSuccess(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeInternalServerError = "INTERNAL_SERVER_ERROR"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeAlreadyCheckedIn    = "ALREADY_CHECKED_IN"
	ErrCodeNotCheckedIn        = "NOT_CHECKED_IN"
	ErrCodeConcurrentUpdate    = "CONCURRENT_UPDATE"
)

// RespondValidationFailed is the standard 400 for payloads and query strings rejected by the validator.
func RespondValidationFailed(c *gin.Context, details string) {
	RespondWithError(c, NewAPIError(http.StatusBadRequest, ErrCodeValidationFailed, "Input validation failed", details))
}

// RespondInternalError hides the cause from the client.
func RespondInternalError(c *gin.Context, message string) {
	RespondWithError(c, NewAPIError(http.StatusInternalServerError, ErrCodeInternalServerError, message, ""))
}
