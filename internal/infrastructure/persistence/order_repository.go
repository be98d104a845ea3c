package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByReference finds an order by its full merchant reference
func (r *GormOrderRepository) FindByReference(ctx context.Context, reference string) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).Preload("Items").
		First(&o, "reference = ?", strings.ToUpper(strings.TrimSpace(reference))).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByReferenceAndEmail finds an order for guest tracking by full reference
// or last-8 suffix plus the guest email. Any mismatch collapses to NOT_FOUND.
func (r *GormOrderRepository) FindByReferenceAndEmail(ctx context.Context, ref, email string) (*order.Order, error) {
	ref = strings.ToUpper(strings.TrimSpace(ref))
	email = strings.ToLower(strings.TrimSpace(email))
	if ref == "" || email == "" {
		return nil, shared.ErrNotFound
	}

	query := r.db.WithContext(ctx).Preload("Items").Where("guest_email = ?", email)
	if len(ref) == 8 {
		query = query.Where("reference LIKE ?", "%"+ref)
	} else {
		query = query.Where("reference = ?", ref)
	}

	var o order.Order
	if err := query.First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByUserID lists a user's orders, newest first
func (r *GormOrderRepository) FindByUserID(ctx context.Context, userID uuid.UUID, filter shared.Filter) (*shared.Paginated[order.Order], error) {
	return r.findPage(ctx, filter, "user_id = ?", userID)
}

// FindByStatus lists orders in the given status
func (r *GormOrderRepository) FindByStatus(ctx context.Context, status order.Status, filter shared.Filter) (*shared.Paginated[order.Order], error) {
	return r.findPage(ctx, filter, "status = ?", status)
}

// FindPendingOlderThan returns PENDING_PAYMENT orders created before cutoff
func (r *GormOrderRepository) FindPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]order.Order, error) {
	var orders []order.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("status = ? AND created_at < ?", order.StatusPendingPayment, cutoff).
		Order("created_at asc").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// Create inserts the order together with its items
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save persists the order guarded by its version: a concurrent writer that
// already bumped the version makes this update match zero rows, surfaced as
// CONCURRENCY_CONFLICT. The sweep and reconciliation rely on this to never
// overwrite each other.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	result := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("id = ? AND version = ?", o.ID, o.Version-1).
		Updates(map[string]interface{}{
			"status":       o.Status,
			"payment_ref":  o.PaymentRef,
			"shipping_ref": o.ShippingRef,
			"review_note":  o.ReviewNote,
			"paid_at":      o.PaidAt,
			"shipped_at":   o.ShippedAt,
			"delivered_at": o.DeliveredAt,
			"cancelled_at": o.CancelledAt,
			"refunded_at":  o.RefundedAt,
			"version":      o.Version,
			"updated_at":   o.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func (r *GormOrderRepository) findPage(ctx context.Context, filter shared.Filter, cond string, arg interface{}) (*shared.Paginated[order.Order], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	query := r.db.WithContext(ctx).Model(&order.Order{}).Where(cond, arg)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var orders []order.Order
	err := query.Preload("Items").
		Order("created_at desc").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(orders, total, filter.Page, filter.PageSize)
	return &page, nil
}

var _ order.Repository = (*GormOrderRepository)(nil)
