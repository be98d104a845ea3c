package order

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

const sweepCancelReason = "abandoned checkout"

// AbandonedOrderService cancels orders stuck in PENDING_PAYMENT past the
// checkout timeout and returns their reservations to the pool. It shares the
// resolved-order guard with payment reconciliation: an order that got paid
// between the candidate query and the sweep transaction is left untouched.
type AbandonedOrderService struct {
	scope          TransactionScope
	orderRepo      order.Repository
	timeout        time.Duration
	batchSize      int
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewAbandonedOrderService creates a new AbandonedOrderService
func NewAbandonedOrderService(scope TransactionScope, orderRepo order.Repository, timeout time.Duration, batchSize int, logger *zap.Logger) *AbandonedOrderService {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &AbandonedOrderService{
		scope:     scope,
		orderRepo: orderRepo,
		timeout:   timeout,
		batchSize: batchSize,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *AbandonedOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SweepOnce cancels one batch of abandoned orders and returns the number
// swept. Each order is handled in its own transaction so one conflict does
// not abort the batch.
func (s *AbandonedOrderService) SweepOnce(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.timeout)
	candidates, err := s.orderRepo.FindPendingOlderThan(ctx, cutoff, s.batchSize)
	if err != nil {
		return 0, err
	}

	swept := 0
	for i := range candidates {
		select {
		case <-ctx.Done():
			return swept, ctx.Err()
		default:
		}

		done, err := s.sweepOne(ctx, &candidates[i])
		if err != nil {
			// Lost the race against a concurrent payment or another sweep
			// instance; the order is resolved either way.
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				continue
			}
			s.logger.Error("failed to sweep abandoned order",
				zap.String("order_id", candidates[i].ID.String()),
				zap.String("reference", candidates[i].Reference),
				zap.Error(err))
			continue
		}
		if done {
			swept++
		}
	}

	if swept > 0 {
		s.logger.Info("released abandoned checkouts",
			zap.Int("swept", swept),
			zap.Int("candidates", len(candidates)),
			zap.Duration("timeout", s.timeout))
	}
	return swept, nil
}

func (s *AbandonedOrderService) sweepOne(ctx context.Context, candidate *order.Order) (bool, error) {
	var swept *order.Order

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, candidate.ID)
		if err != nil {
			return err
		}
		// Re-check inside the transaction: the candidate query ran outside it
		// and the order may have been paid since.
		if o.IsResolved() {
			return nil
		}
		if err := o.Cancel(sweepCancelReason); err != nil {
			return err
		}
		if err := repos.OrderRepo().Save(ctx, o); err != nil {
			return err
		}
		for _, item := range o.Items {
			if err := repos.StockRepo().Release(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		swept = o
		return nil
	})
	if err != nil || swept == nil {
		return false, err
	}

	if s.eventPublisher != nil {
		for _, event := range swept.GetDomainEvents() {
			_ = s.eventPublisher.Publish(ctx, event)
		}
		swept.ClearDomainEvents()
	}
	return true, nil
}
