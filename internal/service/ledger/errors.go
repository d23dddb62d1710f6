package ledger

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is. The structured types below wrap
// them with the context needed to render a user-facing message.
var (
	ErrBatchNotFound  = errors.New("batch not found")
	ErrItemNotFound   = errors.New("inventory item not found")
	ErrRecordNotFound = errors.New("record not found")

	ErrInsufficientPopulation = errors.New("insufficient population")
	ErrInsufficientStock      = errors.New("insufficient stock")

	// ErrConcurrencyConflict surfaces after the bounded retry on the store's
	// optimistic-conflict signal is exhausted.
	ErrConcurrencyConflict = errors.New("transaction conflict retries exhausted")

	ErrValidation = errors.New("invalid input")
)

// InsufficientPopulationError reports a mortality or sale quantity exceeding
// the batch's current population.
type InsufficientPopulationError struct {
	BatchID   string
	Requested int
	Available int
}

func (e *InsufficientPopulationError) Error() string {
	return fmt.Sprintf("batch %s: requested %d birds, only %d available", e.BatchID, e.Requested, e.Available)
}

func (e *InsufficientPopulationError) Unwrap() error { return ErrInsufficientPopulation }

// InsufficientStockError reports a consumption exceeding the item's stock.
type InsufficientStockError struct {
	ItemID    string
	Requested float64
	Available float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("item %s: requested %.2f, only %.2f in stock", e.ItemID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ValidationError reports malformed input rejected before any store access.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
