package payment

import (
	"context"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/stock"
)

// TransactionScope provides transactional access to the repositories
// reconciliation touches. The notification insert, the order transition and
// the stock mutation must commit or roll back as one unit; a crash between
// them must never leave a recorded notification without its effects.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories bound to the current
// transaction
type TransactionalRepositories interface {
	OrderRepo() order.Repository
	StockRepo() stock.Repository
	NotificationRepo() payment.Repository
}

// NoOpTransactionScope runs the function without a real transaction.
// Used by tests that back the scope with mocks.
type NoOpTransactionScope struct {
	orderRepo        order.Repository
	stockRepo        stock.Repository
	notificationRepo payment.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(orderRepo order.Repository, stockRepo stock.Repository, notificationRepo payment.Repository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:        orderRepo,
		stockRepo:        stockRepo,
		notificationRepo: notificationRepo,
	}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the order repository
func (s *NoOpTransactionScope) OrderRepo() order.Repository { return s.orderRepo }

// StockRepo returns the stock repository
func (s *NoOpTransactionScope) StockRepo() stock.Repository { return s.stockRepo }

// NotificationRepo returns the notification repository
func (s *NoOpTransactionScope) NotificationRepo() payment.Repository { return s.notificationRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
