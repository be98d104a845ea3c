package persistence

import (
	"context"

	"gorm.io/gorm"

	apppayment "github.com/storefront/backend/internal/application/payment"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/stock"
)

// GormReconciliationScope implements the reconciliation transaction scope
// using GORM transactions: notification insert, order transition and stock
// movement commit or roll back as one unit.
type GormReconciliationScope struct {
	db *gorm.DB
}

// NewGormReconciliationScope creates a new GormReconciliationScope
func NewGormReconciliationScope(db *gorm.DB) *GormReconciliationScope {
	return &GormReconciliationScope{db: db}
}

// Execute runs fn within a database transaction
func (s *GormReconciliationScope) Execute(ctx context.Context, fn func(repos apppayment.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&reconciliationRepositories{tx: tx})
	})
}

type reconciliationRepositories struct {
	tx *gorm.DB
}

// OrderRepo returns the order repository scoped to the current transaction
func (r *reconciliationRepositories) OrderRepo() order.Repository {
	return NewGormOrderRepository(r.tx)
}

// StockRepo returns the stock repository scoped to the current transaction
func (r *reconciliationRepositories) StockRepo() stock.Repository {
	return NewGormStockRepository(r.tx)
}

// NotificationRepo returns the notification repository scoped to the current transaction
func (r *reconciliationRepositories) NotificationRepo() payment.Repository {
	return NewGormNotificationRepository(r.tx)
}

var _ apppayment.TransactionScope = (*GormReconciliationScope)(nil)
var _ apppayment.TransactionalRepositories = (*reconciliationRepositories)(nil)
