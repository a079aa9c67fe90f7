package service

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")

	// ErrStockConflict is returned by conditional stock decrements that
	// matched nothing: the product exists but no longer has enough stock.
	ErrStockConflict = errors.New("stock conflict")
)

// ValidationError rejects malformed or empty input. It is surfaced to the
// caller as a 400 with its message and never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// InsufficientStockError means a requested quantity exceeds current stock.
// The caller must re-fetch the catalog and let the user adjust.
type InsufficientStockError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}
