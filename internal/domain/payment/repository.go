package payment

import (
	"context"
)

// Repository persists reconciled notifications.
//
// Create must surface the unique-index collision on ProviderOrderRef as
// shared.ErrAlreadyExists; the reconciliation service relies on that error to
// detect duplicate deliveries and replay the recorded outcome instead of
// processing again.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	FindByProviderOrderRef(ctx context.Context, orderRef string) (*Notification, error)
	Save(ctx context.Context, n *Notification) error
}
