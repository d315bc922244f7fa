/*
errors.go - Centralized error types for the billing engine

ERROR CATEGORIES:
  1. Lookup errors - unknown catalog key or ledger position
  2. Validation errors - empty selection, malformed items, bad quantities
  3. Conflict errors - insufficient stock, duplicate checkout

All of them are recoverable: the failing operation leaves catalog and
ledger exactly as they were, and the caller re-prompts the user.

USAGE:
  if errors.Is(err, billing.ErrInsufficientStock) {
      var se *billing.InsufficientStockError
      errors.As(err, &se) // se.Name is the offending medicine
  }
*/
package billing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned for an unknown catalog name or ledger position.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientStock is returned when a decrement would drive stock negative.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrEmptySelection is returned by checkout when nothing was selected.
	ErrEmptySelection = errors.New("empty selection: choose at least one procedure or medicine")

	// ErrInvalidItem is returned when a catalog item fails construction checks.
	ErrInvalidItem = errors.New("invalid catalog item")

	// ErrInvalidQuantity is returned for zero or negative stock movements.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrDuplicateItem is returned when a catalog name is already taken.
	ErrDuplicateItem = errors.New("duplicate catalog item")

	// ErrDuplicateCheckout is returned when an idempotency key was already recorded.
	ErrDuplicateCheckout = errors.New("checkout already recorded")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError names the missing key.
type NotFoundError struct {
	Kind string // "medicine", "procedure", "transaction"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// InsufficientStockError names the medicine that blocked the operation.
type InsufficientStockError struct {
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: available %d, requested %d",
		e.Name, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrEmptySelection) ||
		errors.Is(err, ErrInvalidItem) ||
		errors.Is(err, ErrInvalidQuantity)
}

// IsConflict returns true if the request was valid but current state refused it.
func IsConflict(err error) bool {
	return errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrDuplicateItem) ||
		errors.Is(err, ErrDuplicateCheckout)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
