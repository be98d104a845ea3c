package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/stock"
)

// GormStockRepository implements stock.Repository using GORM.
//
// The ledger operations are single conditional UPDATEs: the quantity guard
// sits in the WHERE clause, so the row either changes atomically or not at
// all. Zero rows affected means the guard failed (or the product has no
// ledger row); no read-check-write window exists for concurrent checkouts to
// slip through.
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// FindByProductID finds the ledger row for a product
func (r *GormStockRepository) FindByProductID(ctx context.Context, productID uuid.UUID) (*stock.StockItem, error) {
	var item stock.StockItem
	if err := r.db.WithContext(ctx).First(&item, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByProductIDs finds ledger rows for multiple products
func (r *GormStockRepository) FindByProductIDs(ctx context.Context, productIDs []uuid.UUID) ([]stock.StockItem, error) {
	var items []stock.StockItem
	if err := r.db.WithContext(ctx).Where("product_id IN ?", productIDs).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a new ledger row
func (r *GormStockRepository) Create(ctx context.Context, item *stock.StockItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save persists non-counter fields (threshold, restock totals)
func (r *GormStockRepository) Save(ctx context.Context, item *stock.StockItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Reserve holds qty units if availability covers them
func (r *GormStockRepository) Reserve(ctx context.Context, productID uuid.UUID, qty int64) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE stock_items
		SET reserved_quantity = reserved_quantity + ?, version = version + 1, updated_at = NOW()
		WHERE product_id = ? AND total_quantity - reserved_quantity - sold_quantity >= ?`,
		qty, productID, qty)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrInsufficientStock
	}
	return nil
}

// Commit moves qty units from reserved to sold
func (r *GormStockRepository) Commit(ctx context.Context, productID uuid.UUID, qty int64) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE stock_items
		SET reserved_quantity = reserved_quantity - ?, sold_quantity = sold_quantity + ?,
		    version = version + 1, updated_at = NOW()
		WHERE product_id = ? AND reserved_quantity >= ?`,
		qty, qty, productID, qty)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrInvariantViolation
	}
	return nil
}

// Release returns qty reserved units to the available pool
func (r *GormStockRepository) Release(ctx context.Context, productID uuid.UUID, qty int64) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE stock_items
		SET reserved_quantity = reserved_quantity - ?, version = version + 1, updated_at = NOW()
		WHERE product_id = ? AND reserved_quantity >= ?`,
		qty, productID, qty)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrInvariantViolation
	}
	return nil
}

// Availability returns the current counters for a product
func (r *GormStockRepository) Availability(ctx context.Context, productID uuid.UUID) (*stock.Snapshot, error) {
	item, err := r.FindByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	snapshot := item.Snapshot()
	return &snapshot, nil
}

var _ stock.Repository = (*GormStockRepository)(nil)
