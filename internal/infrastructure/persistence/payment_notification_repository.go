package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
)

// GormNotificationRepository implements payment.Repository using GORM.
// The unique index on provider_order_ref makes Create the idempotency gate:
// exactly one insert per order reference ever succeeds.
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create inserts the notification; a duplicate provider order reference is
// surfaced as ErrAlreadyExists for the caller to replay the recorded outcome
func (r *GormNotificationRepository) Create(ctx context.Context, n *payment.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByProviderOrderRef finds the recorded notification for an order reference
func (r *GormNotificationRepository) FindByProviderOrderRef(ctx context.Context, orderRef string) (*payment.Notification, error) {
	var n payment.Notification
	if err := r.db.WithContext(ctx).First(&n, "provider_order_ref = ?", orderRef).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// Save persists review-flag updates
func (r *GormNotificationRepository) Save(ctx context.Context, n *payment.Notification) error {
	return r.db.WithContext(ctx).Save(n).Error
}

var _ payment.Repository = (*GormNotificationRepository)(nil)
