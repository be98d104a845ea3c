package stock

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists stock ledger rows.
//
// Reserve, Commit and Release are the concurrency-critical operations: each
// must be implemented as a single atomic conditional update on the product's
// row so that two concurrent checkouts for the last unit cannot both succeed.
// The quantity guard lives in the update predicate, not in application code.
type Repository interface {
	FindByProductID(ctx context.Context, productID uuid.UUID) (*StockItem, error)
	FindByProductIDs(ctx context.Context, productIDs []uuid.UUID) ([]StockItem, error)
	Create(ctx context.Context, item *StockItem) error
	Save(ctx context.Context, item *StockItem) error

	// Reserve atomically checks total-reserved-sold >= qty and increments
	// reserved. Returns shared.ErrInsufficientStock when the guard fails.
	Reserve(ctx context.Context, productID uuid.UUID, qty int64) error

	// Commit atomically moves qty from reserved to sold. Returns
	// shared.ErrInvariantViolation when fewer than qty units are reserved.
	Commit(ctx context.Context, productID uuid.UUID, qty int64) error

	// Release atomically decrements reserved by qty, returning the units to
	// the available pool. Same guard as Commit.
	Release(ctx context.Context, productID uuid.UUID, qty int64) error

	// Availability returns a read-only snapshot of the product's counters
	Availability(ctx context.Context, productID uuid.UUID) (*Snapshot, error)
}
