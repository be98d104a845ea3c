package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shipping"
)

// GormQuoteRepository implements shipping.Repository using GORM
type GormQuoteRepository struct {
	db *gorm.DB
}

// NewGormQuoteRepository creates a new GormQuoteRepository
func NewGormQuoteRepository(db *gorm.DB) *GormQuoteRepository {
	return &GormQuoteRepository{db: db}
}

// FindByID finds a quote by ID
func (r *GormQuoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Quote, error) {
	var q shipping.Quote
	if err := r.db.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

// FindLatestByOrderID finds the most recently created quote for an order
func (r *GormQuoteRepository) FindLatestByOrderID(ctx context.Context, orderID uuid.UUID) (*shipping.Quote, error) {
	var q shipping.Quote
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at desc").
		First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

// Create inserts a new quote
func (r *GormQuoteRepository) Create(ctx context.Context, q *shipping.Quote) error {
	return r.db.WithContext(ctx).Create(q).Error
}

// Save persists quote confirmation guarded by version
func (r *GormQuoteRepository) Save(ctx context.Context, q *shipping.Quote) error {
	result := r.db.WithContext(ctx).Model(&shipping.Quote{}).
		Where("id = ? AND version = ?", q.ID, q.Version-1).
		Updates(map[string]interface{}{
			"status":       q.Status,
			"chosen_id":    q.ChosenID,
			"shipment_ref": q.ShipmentRef,
			"version":      q.Version,
			"updated_at":   q.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

var _ shipping.Repository = (*GormQuoteRepository)(nil)
