// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by a service wraps exactly one of
// these so handlers can map them with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrConflict          = errors.New("conflict")
	ErrAuth              = errors.New("authentication failed")
)

// Refined not-found errors.
var (
	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
	ErrClientNotFound  = fmt.Errorf("client %w", ErrNotFound)
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
	ErrOrderNotFound   = fmt.Errorf("order %w", ErrNotFound)
	ErrInvoiceNotFound = fmt.Errorf("invoice %w", ErrNotFound)
)

// Refined authentication errors.
var (
	ErrUnknownEmail      = fmt.Errorf("%w: user not found", ErrAuth)
	ErrIncorrectPassword = fmt.Errorf("%w: incorrect password", ErrAuth)
)

// Refined conflicts.
var (
	ErrEmailTaken    = fmt.Errorf("%w: user already exists", ErrConflict)
	ErrOrderInFlight = fmt.Errorf("%w: an order with this idempotency key is still being processed", ErrConflict)
	ErrInvoiceExists = fmt.Errorf("%w: order already has an invoice", ErrConflict)
)

// ValidationError carries the field-level details of a rejected request.
type ValidationError struct {
	Cause error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Cause)
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Cause}
}

func validationError(cause error) error {
	return &ValidationError{Cause: cause}
}

func invalid(format string, args ...interface{}) error {
	return validationError(fmt.Errorf(format, args...))
}

// InsufficientStockError names the line item that could not be fulfilled.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
