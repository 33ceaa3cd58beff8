package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	enginerrors "github.com/merchstack/rule-engine/internal/errors"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrorCodeRuleNotFound     ErrorCode = "RULE_NOT_FOUND"
	ErrorCodeFacetNotFound    ErrorCode = "FACET_NOT_FOUND"
	ErrorCodeEntityNotFound   ErrorCode = "ENTITY_NOT_FOUND"
	ErrorCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrorCodeInvalidJSON      ErrorCode = "INVALID_JSON"

	// Server Error Codes (5xx)
	ErrorCodeInternalError    ErrorCode = "INTERNAL_ERROR"
	ErrorCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	ErrorCodeFeedFailed       ErrorCode = "FEED_FAILED"
)

// ErrorDetail provides additional context for an error
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// APIError represents a standardized API error response
type APIError struct {
	Error     string        `json:"error"`
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   []ErrorDetail `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// APIErrorResponse creates a standardized error response
func APIErrorResponse(code ErrorCode, message string, details ...ErrorDetail) *APIError {
	return &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...ErrorDetail) {
	c.JSON(statusCode, APIErrorResponse(code, message, details...))
}

// SendDomainError maps a domain error to its HTTP status and error code.
func SendDomainError(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, enginerrors.ErrRuleNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeRuleNotFound, err.Error())
	case errors.Is(err, enginerrors.ErrFacetNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeFacetNotFound, err.Error())
	case errors.Is(err, enginerrors.ErrEntityNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeEntityNotFound, err.Error())
	case errors.Is(err, enginerrors.ErrInvalidInput):
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
	case errors.Is(err, enginerrors.ErrStoreUnavailable):
		SendError(c, http.StatusServiceUnavailable, ErrorCodeStoreUnavailable, err.Error())
	default:
		SendInternalError(c, operation, err)
	}
}

// SendRuleNotFoundError sends a standardized rule not found error
func SendRuleNotFoundError(c *gin.Context, ruleID string) {
	SendError(c, http.StatusNotFound, ErrorCodeRuleNotFound,
		"Rule '"+ruleID+"' not found")
}

// SendInvalidJSONError sends a standardized invalid JSON error
func SendInvalidJSONError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON,
		"Invalid JSON in request body: "+err.Error())
}

// SendInternalError sends a standardized internal server error
func SendInternalError(c *gin.Context, operation string, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodeInternalError,
		"Internal error during "+operation+": "+err.Error())
}

// SendStructuredValidationError sends a validation error with structured details
func SendStructuredValidationError(c *gin.Context, result *ValidationResult) {
	details := make([]ErrorDetail, len(result.Errors))
	for i, err := range result.Errors {
		details[i] = ErrorDetail{
			Field:   err.Field,
			Message: err.Message,
			Code:    "VALIDATION_ERROR",
		}
	}

	SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "Request validation failed", details...)
}
