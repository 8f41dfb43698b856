package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a product is neither stored locally nor resolvable externally.
	ErrNotFound = errors.New("product not found")

	// ErrUpstreamUnavailable is returned when the external catalog cannot be read.
	ErrUpstreamUnavailable = errors.New("external catalog unavailable")

	// ErrPersistence is returned when the local store fails.
	ErrPersistence = errors.New("persistence failure")

	// ErrValidation is the sentinel wrapped by every ValidationError.
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", v.Field, v.Reason)
}

func (v *ValidationError) Unwrap() error {
	return ErrValidation
}
