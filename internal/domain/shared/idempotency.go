package shared

import (
	"context"
	"time"
)

// IdempotencyStore stores processed notification keys to short-circuit
// duplicate webhook deliveries. It is a fast-path cache in front of the
// durable uniqueness constraint on the notification log; a miss here still
// goes through the database check.
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL
	// Returns true if the key was newly marked, false if it was already present
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}
