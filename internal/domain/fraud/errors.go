package fraud

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when a transaction fails the domain checks of feature extraction.
	// The transaction should be declined, not retried.
	ErrValidation = errors.New("invalid transaction")

	// ErrNotInitialized is returned when scoring is attempted before the classifier has been trained
	ErrNotInitialized = errors.New("fraud model not initialized")

	// ErrInitialization is returned when dataset generation or model fitting fails.
	// No model is cached on failure, so initialization can be retried.
	ErrInitialization = errors.New("fraud model initialization failed")

	// ErrEmptyDataset is returned when the model is asked to fit zero samples
	ErrEmptyDataset = errors.New("training dataset is empty")
)

// ValidationError describes which transaction field was rejected and why
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
