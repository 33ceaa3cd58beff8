// Package api provides validation utilities for API request handling.
package api

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateRuleID validates a rule ID path parameter
func ValidateRuleID(ruleID string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if ruleID == "" {
		result.AddError("ruleId", "Rule ID is required")
		return result
	}

	if strings.TrimSpace(ruleID) != ruleID {
		result.AddError("ruleId", "Rule ID cannot have leading or trailing whitespace")
		return result
	}

	return result
}

// ValidateBoostID validates a boost mapping ID path parameter
func ValidateBoostID(boostID string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if boostID == "" {
		result.AddError("boostId", "Boost ID is required")
		return result
	}

	if strings.TrimSpace(boostID) != boostID {
		result.AddError("boostId", "Boost ID cannot have leading or trailing whitespace")
		return result
	}

	return result
}

// ValidateJSONBinding binds the request body and converts binding failures
// into a validation result.
func ValidateJSONBinding(c *gin.Context, target interface{}) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if err := c.ShouldBindJSON(target); err != nil {
		result.AddError("body", "Invalid JSON in request body: "+err.Error())
	}

	return result
}
