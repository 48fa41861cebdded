// Package shared contains common domain types and errors used across all
// domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Input errors (client-side: the caller sent something unusable).
	ErrMissingField = errors.New("required field is missing")
	ErrInvalidValue = errors.New("value cannot be parsed or is out of its valid domain")

	// Training errors (server-side: the historical dataset is unusable).
	ErrDataset = errors.New("dataset malformed or insufficiently diverse")

	// Model errors.
	ErrUnfittedModel = errors.New("model has not been trained")

	// Storage errors.
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// External service errors.
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrUnauthorized       = errors.New("unauthorized")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "metrics", "ml", "advice"
	Op      string // Operation that failed, e.g., "Parse", "Train"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// IsMissingField checks if the error reports an absent required metric.
func IsMissingField(err error) bool {
	return errors.Is(err, ErrMissingField)
}

// IsInvalidValue checks if the error reports an unparseable or out-of-domain metric.
func IsInvalidValue(err error) bool {
	return errors.Is(err, ErrInvalidValue)
}

// IsClientInput reports whether the failure was caused by caller input,
// as opposed to a server-side dataset or model fault. The HTTP shell uses
// this to pick between 4xx and 5xx status codes.
func IsClientInput(err error) bool {
	return errors.Is(err, ErrMissingField) || errors.Is(err, ErrInvalidValue)
}

// IsDataset checks if the error reports an unusable training dataset.
func IsDataset(err error) bool {
	return errors.Is(err, ErrDataset)
}

// IsUnfittedModel checks if inference was attempted before training completed.
func IsUnfittedModel(err error) bool {
	return errors.Is(err, ErrUnfittedModel)
}

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
