// Package errors defines the domain errors of the rule engine.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrRuleNotFound is returned when a rule is not found
	ErrRuleNotFound = errors.New("rule not found")

	// ErrFacetNotFound is returned when a facet definition is not found
	ErrFacetNotFound = errors.New("facet not found")

	// ErrEntityNotFound is returned when a taxonomy entity is not found
	ErrEntityNotFound = errors.New("entity not found")

	// ErrStoreUnavailable is returned when the document store cannot be reached
	ErrStoreUnavailable = errors.New("document store unavailable")

	// ErrNoCategoryPaths is returned when a rule references categories but
	// none of them expand to a single usable path
	ErrNoCategoryPaths = errors.New("no category paths")

	// ErrUnknownCondition is returned for a condition type outside the
	// compiler's table; it indicates invalid authoring data
	ErrUnknownCondition = errors.New("unknown condition type")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// RuleNotFoundError represents a rule not found error with context
type RuleNotFoundError struct {
	RuleID string
}

func (e *RuleNotFoundError) Error() string {
	return fmt.Sprintf("rule with ID '%s' not found", e.RuleID)
}

func (e *RuleNotFoundError) Is(target error) bool {
	return target == ErrRuleNotFound
}

// NewRuleNotFoundError creates a new RuleNotFoundError
func NewRuleNotFoundError(ruleID string) *RuleNotFoundError {
	return &RuleNotFoundError{RuleID: ruleID}
}

// FacetNotFoundError represents a facet not found error with context
type FacetNotFoundError struct {
	FacetID string
}

func (e *FacetNotFoundError) Error() string {
	return fmt.Sprintf("facet with ID '%s' not found", e.FacetID)
}

func (e *FacetNotFoundError) Is(target error) bool {
	return target == ErrFacetNotFound
}

// NewFacetNotFoundError creates a new FacetNotFoundError
func NewFacetNotFoundError(facetID string) *FacetNotFoundError {
	return &FacetNotFoundError{FacetID: facetID}
}

// EntityNotFoundError represents a taxonomy entity not found error with context
type EntityNotFoundError struct {
	Kind string
	ID   string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("%s with ID '%s' not found", e.Kind, e.ID)
}

func (e *EntityNotFoundError) Is(target error) bool {
	return target == ErrEntityNotFound
}

// NewEntityNotFoundError creates a new EntityNotFoundError
func NewEntityNotFoundError(kind, id string) *EntityNotFoundError {
	return &EntityNotFoundError{Kind: kind, ID: id}
}

// StoreUnavailableError represents a failed or timed out retrieval call
type StoreUnavailableError struct {
	Cause error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("document store unavailable: %v", e.Cause)
}

func (e *StoreUnavailableError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Cause
}

// NewStoreUnavailableError creates a new StoreUnavailableError
func NewStoreUnavailableError(cause error) *StoreUnavailableError {
	return &StoreUnavailableError{Cause: cause}
}

// UnknownConditionError represents a ranking condition outside the
// compiler's condition table
type UnknownConditionError struct {
	ConditionType string
}

func (e *UnknownConditionError) Error() string {
	return fmt.Sprintf("unknown ranking condition type '%s'", e.ConditionType)
}

func (e *UnknownConditionError) Is(target error) bool {
	return target == ErrUnknownCondition
}

// NewUnknownConditionError creates a new UnknownConditionError
func NewUnknownConditionError(conditionType string) *UnknownConditionError {
	return &UnknownConditionError{ConditionType: conditionType}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
