package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced product or sale does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned when the store aborted a transaction because of a
	// concurrent writer. It is surfaced to the caller, never retried.
	ErrConflict = errors.New("concurrent modification, please retry")

	// ErrProductHasSales blocks deleting a product that still has sale history
	ErrProductHasSales = errors.New("product has recorded sales and cannot be deleted")
)

// ValidationError reports a rejected input field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// InsufficientStockError is returned when a debit exceeds the available stock
type InsufficientStockError struct {
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("cannot sell more than available stock (%d)", e.Available)
}

// AsValidationError converts the error into a quantity field error
func (e *InsufficientStockError) AsValidationError() *ValidationError {
	return NewValidationError("quantity", e.Error())
}

// IsValidation reports whether err is a validation failure of any kind
func IsValidation(err error) bool {
	var verr *ValidationError
	var serr *InsufficientStockError
	return errors.As(err, &verr) || errors.As(err, &serr)
}
