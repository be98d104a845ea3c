package persistence

import (
	"context"

	"gorm.io/gorm"

	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/stock"
)

// GormCheckoutScope implements the checkout transaction scope using GORM
// transactions: order insert and stock reservations commit or roll back as
// one unit.
type GormCheckoutScope struct {
	db *gorm.DB
}

// NewGormCheckoutScope creates a new GormCheckoutScope
func NewGormCheckoutScope(db *gorm.DB) *GormCheckoutScope {
	return &GormCheckoutScope{db: db}
}

// Execute runs fn within a database transaction
func (s *GormCheckoutScope) Execute(ctx context.Context, fn func(repos apporder.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&checkoutRepositories{tx: tx})
	})
}

type checkoutRepositories struct {
	tx *gorm.DB
}

// OrderRepo returns the order repository scoped to the current transaction
func (r *checkoutRepositories) OrderRepo() order.Repository {
	return NewGormOrderRepository(r.tx)
}

// StockRepo returns the stock repository scoped to the current transaction
func (r *checkoutRepositories) StockRepo() stock.Repository {
	return NewGormStockRepository(r.tx)
}

var _ apporder.TransactionScope = (*GormCheckoutScope)(nil)
var _ apporder.TransactionalRepositories = (*checkoutRepositories)(nil)
