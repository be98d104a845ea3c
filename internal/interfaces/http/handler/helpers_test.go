package handler

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/stock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Function-field stubs keep each test declarative: only the methods a test
// cares about get behavior, everything else answers not-found or no-op.

type stubOrderRepo struct {
	findByID       func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	findByRef      func(ctx context.Context, ref string) (*order.Order, error)
	findByRefEmail func(ctx context.Context, ref, email string) (*order.Order, error)
	findByStatus   func(ctx context.Context, status order.Status, filter shared.Filter) (*shared.Paginated[order.Order], error)
	create         func(ctx context.Context, o *order.Order) error
	save           func(ctx context.Context, o *order.Order) error
}

func (s *stubOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	if s.findByID != nil {
		return s.findByID(ctx, id)
	}
	return nil, shared.ErrNotFound
}

func (s *stubOrderRepo) FindByReference(ctx context.Context, ref string) (*order.Order, error) {
	if s.findByRef != nil {
		return s.findByRef(ctx, ref)
	}
	return nil, shared.ErrNotFound
}

func (s *stubOrderRepo) FindByReferenceAndEmail(ctx context.Context, ref, email string) (*order.Order, error) {
	if s.findByRefEmail != nil {
		return s.findByRefEmail(ctx, ref, email)
	}
	return nil, shared.ErrNotFound
}

func (s *stubOrderRepo) FindByUserID(context.Context, uuid.UUID, shared.Filter) (*shared.Paginated[order.Order], error) {
	return nil, shared.ErrNotFound
}

func (s *stubOrderRepo) FindByStatus(ctx context.Context, status order.Status, filter shared.Filter) (*shared.Paginated[order.Order], error) {
	if s.findByStatus != nil {
		return s.findByStatus(ctx, status, filter)
	}
	return nil, shared.ErrNotFound
}

func (s *stubOrderRepo) FindPendingOlderThan(context.Context, time.Time, int) ([]order.Order, error) {
	return nil, nil
}

func (s *stubOrderRepo) Create(ctx context.Context, o *order.Order) error {
	if s.create != nil {
		return s.create(ctx, o)
	}
	return nil
}

func (s *stubOrderRepo) Save(ctx context.Context, o *order.Order) error {
	if s.save != nil {
		return s.save(ctx, o)
	}
	return nil
}

type stubStockRepo struct {
	reserve      func(ctx context.Context, productID uuid.UUID, qty int64) error
	commit       func(ctx context.Context, productID uuid.UUID, qty int64) error
	release      func(ctx context.Context, productID uuid.UUID, qty int64) error
	availability func(ctx context.Context, productID uuid.UUID) (*stock.Snapshot, error)
}

func (s *stubStockRepo) FindByProductID(context.Context, uuid.UUID) (*stock.StockItem, error) {
	return nil, shared.ErrNotFound
}

func (s *stubStockRepo) FindByProductIDs(context.Context, []uuid.UUID) ([]stock.StockItem, error) {
	return nil, nil
}

func (s *stubStockRepo) Create(context.Context, *stock.StockItem) error { return nil }

func (s *stubStockRepo) Save(context.Context, *stock.StockItem) error { return nil }

func (s *stubStockRepo) Reserve(ctx context.Context, productID uuid.UUID, qty int64) error {
	if s.reserve != nil {
		return s.reserve(ctx, productID, qty)
	}
	return nil
}

func (s *stubStockRepo) Commit(ctx context.Context, productID uuid.UUID, qty int64) error {
	if s.commit != nil {
		return s.commit(ctx, productID, qty)
	}
	return nil
}

func (s *stubStockRepo) Release(ctx context.Context, productID uuid.UUID, qty int64) error {
	if s.release != nil {
		return s.release(ctx, productID, qty)
	}
	return nil
}

func (s *stubStockRepo) Availability(ctx context.Context, productID uuid.UUID) (*stock.Snapshot, error) {
	if s.availability != nil {
		return s.availability(ctx, productID)
	}
	return nil, shared.ErrNotFound
}

type stubNotificationRepo struct {
	create    func(ctx context.Context, n *payment.Notification) error
	findByRef func(ctx context.Context, orderRef string) (*payment.Notification, error)
}

func (s *stubNotificationRepo) Create(ctx context.Context, n *payment.Notification) error {
	if s.create != nil {
		return s.create(ctx, n)
	}
	return nil
}

func (s *stubNotificationRepo) FindByProviderOrderRef(ctx context.Context, orderRef string) (*payment.Notification, error) {
	if s.findByRef != nil {
		return s.findByRef(ctx, orderRef)
	}
	return nil, shared.ErrNotFound
}

func (s *stubNotificationRepo) Save(context.Context, *payment.Notification) error { return nil }

type stubCatalogRepo struct {
	findByIDs func(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error)
}

func (s *stubCatalogRepo) FindByID(context.Context, uuid.UUID) (*catalog.Product, error) {
	return nil, shared.ErrNotFound
}

func (s *stubCatalogRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if s.findByIDs != nil {
		return s.findByIDs(ctx, ids)
	}
	return nil, shared.ErrNotFound
}

func (s *stubCatalogRepo) Create(context.Context, *catalog.Product) error { return nil }

func (s *stubCatalogRepo) Save(context.Context, *catalog.Product) error { return nil }

// pendingOrder builds a guest order with one line of 2 x 19.99 USD
func pendingOrder(t *testing.T) *order.Order {
	t.Helper()
	purchaser, err := order.NewGuestPurchaser("Jane", "jane@example.com", "")
	require.NoError(t, err)
	addr, err := valueobject.NewAddress("1 Main St", "Springfield", "12345")
	require.NoError(t, err)
	o, err := order.NewOrder(purchaser, addr)
	require.NoError(t, err)
	_, err = o.AddItem(uuid.New(), 2, valueobject.NewMoneyUSD(decimal.NewFromFloat(19.99)))
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func testProduct(t *testing.T, price float64) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("SKU-1", "Widget", valueobject.NewMoneyUSD(decimal.NewFromFloat(price)))
	require.NoError(t, err)
	return p
}
