package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&order.Order{}, &order.Item{}, &payment.Notification{}))

	t.Cleanup(func() {
		db.Exec("DELETE FROM order_items")
		db.Exec("DELETE FROM orders")
		db.Exec("DELETE FROM payment_notifications")
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func persistedOrder(t *testing.T, repo *GormOrderRepository) *order.Order {
	t.Helper()
	purchaser, err := order.NewGuestPurchaser("Jane Doe", "jane@example.com", "")
	require.NoError(t, err)
	addr, err := valueobject.NewAddress("1 Main St", "Springfield", "12345")
	require.NoError(t, err)
	o, err := order.NewOrder(purchaser, addr)
	require.NoError(t, err)
	_, err = o.AddItem(uuid.New(), 2, valueobject.NewMoneyUSD(decimal.NewFromFloat(19.99)))
	require.NoError(t, err)

	require.NoError(t, repo.Create(context.Background(), o))
	return o
}

func TestOrderRepositoryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormOrderRepository(db)

	o := persistedOrder(t, repo)

	t.Run("find by id loads items", func(t *testing.T) {
		found, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, o.Reference, found.Reference)
		require.Len(t, found.Items, 1)
		assert.Equal(t, int64(2), found.Items[0].Quantity)
		assert.True(t, found.Items[0].UnitPrice.Equal(decimal.NewFromFloat(19.99)))
	})

	t.Run("find by reference", func(t *testing.T) {
		found, err := repo.FindByReference(ctx, o.Reference)
		require.NoError(t, err)
		assert.Equal(t, o.ID, found.ID)
	})

	t.Run("unknown id maps to not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("duplicate reference is rejected", func(t *testing.T) {
		purchaser, err := order.NewGuestPurchaser("John", "john@example.com", "")
		require.NoError(t, err)
		addr, err := valueobject.NewAddress("2 Side St", "Springfield", "12345")
		require.NoError(t, err)
		dup, err := order.NewOrder(purchaser, addr)
		require.NoError(t, err)
		dup.Reference = o.Reference

		err = repo.Create(ctx, dup)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestOrderRepositoryGuestLookup(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormOrderRepository(db)

	o := persistedOrder(t, repo)
	suffix := o.Reference[len(o.Reference)-8:]

	t.Run("full reference and email", func(t *testing.T) {
		found, err := repo.FindByReferenceAndEmail(ctx, o.Reference, "jane@example.com")
		require.NoError(t, err)
		assert.Equal(t, o.ID, found.ID)
		assert.Len(t, found.Items, 1)
	})

	t.Run("last-8 suffix and email", func(t *testing.T) {
		found, err := repo.FindByReferenceAndEmail(ctx, suffix, "JANE@example.com")
		require.NoError(t, err)
		assert.Equal(t, o.ID, found.ID)
	})

	t.Run("wrong email is not found", func(t *testing.T) {
		_, err := repo.FindByReferenceAndEmail(ctx, o.Reference, "stranger@example.com")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("wrong suffix is not found", func(t *testing.T) {
		_, err := repo.FindByReferenceAndEmail(ctx, "00000000", "jane@example.com")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestOrderRepositorySave(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormOrderRepository(db)

	t.Run("persists a transition with version bump", func(t *testing.T) {
		o := persistedOrder(t, repo)

		changed, err := o.ApplyPaymentResult(order.PaymentOutcomeSuccess, "txn-1")
		require.NoError(t, err)
		require.True(t, changed)
		require.NoError(t, repo.Save(ctx, o))

		found, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusPaid, found.Status)
		assert.Equal(t, 2, found.Version)
		require.NotNil(t, found.PaymentRef)
		assert.Equal(t, "txn-1", *found.PaymentRef)
	})

	t.Run("stale version is a concurrency conflict", func(t *testing.T) {
		o := persistedOrder(t, repo)

		first, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)

		_, err = first.ApplyPaymentResult(order.PaymentOutcomeSuccess, "txn-a")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, first))

		require.NoError(t, second.Cancel("sweep"))
		err = repo.Save(ctx, second)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestOrderRepositoryFindPendingOlderThan(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormOrderRepository(db)

	stale := persistedOrder(t, repo)
	db.Model(&order.Order{}).Where("id = ?", stale.ID).
		Update("created_at", time.Now().Add(-2*time.Hour))

	fresh := persistedOrder(t, repo)

	paid := persistedOrder(t, repo)
	_, err := paid.ApplyPaymentResult(order.PaymentOutcomeSuccess, "txn-1")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, paid))
	db.Model(&order.Order{}).Where("id = ?", paid.ID).
		Update("created_at", time.Now().Add(-2*time.Hour))

	found, err := repo.FindPendingOlderThan(ctx, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)

	require.Len(t, found, 1)
	assert.Equal(t, stale.ID, found[0].ID)
	assert.NotEqual(t, fresh.ID, found[0].ID)
	assert.Len(t, found[0].Items, 1)
}
