// Package repository defines the boundary to the transactional document
// store backing all entity persistence. Implementations live in the
// mongodb (production) and memory (tests, development) subpackages.
package repository

import (
	"context"
	"errors"
)

// Collection names used across the store.
const (
	Batches        = "BATCH"
	InventoryItems = "INVENTORY_ITEM"
	DailyLogs      = "DAILY_LOG"
	Sales          = "SALE"
	Consumptions   = "CONSUMPTION"
	Expenses       = "EXPENSE"
	Users          = "USER"
	Farms          = "FARM"
	Sheds          = "SHED"
)

var (
	// ErrNotFound signals that no document exists at the requested id.
	ErrNotFound = errors.New("document not found")

	// ErrConflict signals that the store aborted a transaction because of a
	// concurrent modification. Callers should retry from a fresh read.
	ErrConflict = errors.New("transaction conflict")

	// ErrNetworkUnavailable signals that the store could not be reached at
	// all. Callers may redirect the operation into the offline outbox.
	ErrNetworkUnavailable = errors.New("store unreachable")
)

// Filter matches documents whose fields equal the given values.
type Filter map[string]any

// Tx is the handle passed into a transaction body. All reads observe a
// consistent snapshot and all writes commit atomically or not at all.
type Tx interface {
	// Get decodes the document at id into out. Returns ErrNotFound.
	Get(ctx context.Context, collection, id string, out any) error

	// Put writes the document at id, inserting or replacing it.
	Put(ctx context.Context, collection, id string, doc any) error

	// Delete removes the document at id. Deleting a missing document is not
	// an error.
	Delete(ctx context.Context, collection, id string) error
}

// Store is an atomic transactional document store keyed by collection and id.
type Store interface {
	// RunTransaction executes fn atomically. An error returned by fn aborts
	// the transaction with no partial state; ErrConflict surfaces when the
	// store detects concurrent modification.
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// Get reads a single document outside any transaction.
	Get(ctx context.Context, collection, id string, out any) error

	// Put writes a single document outside any transaction.
	Put(ctx context.Context, collection, id string, doc any) error

	// Delete removes a single document outside any transaction.
	Delete(ctx context.Context, collection, id string) error

	// List decodes all documents matching filter into out (a pointer to a
	// slice). orderBy is a field name, optionally prefixed with '-' for
	// descending order; empty means unspecified order.
	List(ctx context.Context, collection string, filter Filter, orderBy string, out any) error
}
