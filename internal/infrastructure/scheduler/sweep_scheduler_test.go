package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// stubOrderRepository counts sweep lookups and never finds anything to cancel
type stubOrderRepository struct {
	lookups atomic.Int64
}

func (r *stubOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return nil, shared.ErrNotFound
}

func (r *stubOrderRepository) FindByReference(ctx context.Context, reference string) (*order.Order, error) {
	return nil, shared.ErrNotFound
}

func (r *stubOrderRepository) FindByReferenceAndEmail(ctx context.Context, ref, email string) (*order.Order, error) {
	return nil, shared.ErrNotFound
}

func (r *stubOrderRepository) FindByUserID(ctx context.Context, userID uuid.UUID, filter shared.Filter) (*shared.Paginated[order.Order], error) {
	return nil, shared.ErrNotFound
}

func (r *stubOrderRepository) FindByStatus(ctx context.Context, status order.Status, filter shared.Filter) (*shared.Paginated[order.Order], error) {
	return nil, shared.ErrNotFound
}

func (r *stubOrderRepository) FindPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]order.Order, error) {
	r.lookups.Add(1)
	return nil, nil
}

func (r *stubOrderRepository) Create(ctx context.Context, o *order.Order) error { return nil }
func (r *stubOrderRepository) Save(ctx context.Context, o *order.Order) error   { return nil }

func newScheduler(repo order.Repository, cfg config.SweepConfig) *SweepScheduler {
	service := apporder.NewAbandonedOrderService(
		apporder.NewNoOpTransactionScope(repo, nil),
		repo,
		30*time.Minute,
		100,
		zap.NewNop(),
	)
	return NewSweepScheduler(service, cfg, zap.NewNop())
}

func TestSweepSchedulerRunsPeriodically(t *testing.T) {
	repo := &stubOrderRepository{}
	s := newScheduler(repo, config.SweepConfig{Enabled: true, Interval: 10 * time.Millisecond})

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool {
		return repo.lookups.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestSweepSchedulerDisabled(t *testing.T) {
	repo := &stubOrderRepository{}
	s := newScheduler(repo, config.SweepConfig{Enabled: false, Interval: 10 * time.Millisecond})

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, repo.lookups.Load())
}

func TestSweepSchedulerStartIsIdempotent(t *testing.T) {
	repo := &stubOrderRepository{}
	s := newScheduler(repo, config.SweepConfig{Enabled: true, Interval: time.Hour})

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))

	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
}
