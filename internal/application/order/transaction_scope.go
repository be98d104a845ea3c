package order

import (
	"context"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/stock"
)

// TransactionScope provides transactional access to the order and stock
// repositories. Everything executed inside Execute commits or rolls back as
// one database transaction; checkout relies on this for all-or-nothing
// multi-item reservation.
type TransactionScope interface {
	// Execute runs fn within a database transaction. An error from fn rolls
	// the transaction back; nil commits it.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories bound to the current
// transaction
type TransactionalRepositories interface {
	OrderRepo() order.Repository
	StockRepo() stock.Repository
}

// NoOpTransactionScope runs the function without a real transaction.
// Used by tests that back the scope with mocks.
type NoOpTransactionScope struct {
	orderRepo order.Repository
	stockRepo stock.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(orderRepo order.Repository, stockRepo stock.Repository) *NoOpTransactionScope {
	return &NoOpTransactionScope{orderRepo: orderRepo, stockRepo: stockRepo}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the order repository
func (s *NoOpTransactionScope) OrderRepo() order.Repository { return s.orderRepo }

// StockRepo returns the stock repository
func (s *NoOpTransactionScope) StockRepo() stock.Repository { return s.stockRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
