package shipping

import (
	"context"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Repository persists shipping quotes
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Quote, error)
	FindLatestByOrderID(ctx context.Context, orderID uuid.UUID) (*Quote, error)
	Create(ctx context.Context, q *Quote) error
	Save(ctx context.Context, q *Quote) error
}

// RateRequest describes one shipment to price
type RateRequest struct {
	OrderRef    string
	Destination valueobject.Address
	WeightGrams int64
	ItemCount   int64
}

// Aggregator is the upstream carrier rate aggregator.
//
// RequestRates returns the carrier offers for a shipment. Book books a
// previously quoted offer and returns the aggregator's shipment reference;
// booking the same offer id twice returns the same reference.
// Implementations must return shared.ErrUpstreamUnavailable for transport
// failures so callers can degrade gracefully.
type Aggregator interface {
	RequestRates(ctx context.Context, req RateRequest) ([]Candidate, error)
	Book(ctx context.Context, offerID string) (string, error)
}
