package order

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// Repository persists orders and their items
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByReference(ctx context.Context, reference string) (*Order, error)

	// FindByReferenceAndEmail looks an order up for guest tracking. The ref
	// may be the full merchant reference or its last-8-character suffix; the
	// email must match the guest contact on the order. Returns
	// shared.ErrNotFound on any mismatch so the caller cannot distinguish a
	// wrong reference from a wrong email.
	FindByReferenceAndEmail(ctx context.Context, ref, email string) (*Order, error)

	FindByUserID(ctx context.Context, userID uuid.UUID, filter shared.Filter) (*shared.Paginated[Order], error)
	FindByStatus(ctx context.Context, status Status, filter shared.Filter) (*shared.Paginated[Order], error)

	// FindPendingOlderThan returns orders still in PENDING_PAYMENT created
	// before the cutoff, up to limit rows. Used by the abandonment sweep.
	FindPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]Order, error)

	Create(ctx context.Context, o *Order) error
	Save(ctx context.Context, o *Order) error
}
