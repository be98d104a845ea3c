package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
)

// idempotencyTTL bounds how long the fast-path cache remembers a processed
// reference; the DB unique index remains authoritative forever.
const idempotencyTTL = 48 * time.Hour

// Acknowledgment is the reconciliation result the webhook handler turns into
// the provider's ack body
type Acknowledgment struct {
	OK       bool
	Outcome  payment.Outcome
	Replayed bool
}

// ReconciliationService processes payment-provider notifications exactly
// once. Authenticity comes from the signature verifier; idempotency from the
// unique index on the provider order reference, with an optional cache in
// front of it. The notification record, the order transition and the stock
// movement commit atomically.
type ReconciliationService struct {
	verifier         payment.SignatureVerifier
	scope            TransactionScope
	notificationRepo payment.Repository
	idempotency      shared.IdempotencyStore
	eventPublisher   shared.EventPublisher
	logger           *zap.Logger
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	verifier payment.SignatureVerifier,
	scope TransactionScope,
	notificationRepo payment.Repository,
	logger *zap.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		verifier:         verifier,
		scope:            scope,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// SetIdempotencyStore installs the fast-path duplicate cache
func (s *ReconciliationService) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotency = store
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ReconciliationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// HandleNotification reconciles one provider notification.
//
// The returned Acknowledgment says what to send back to the provider: OK for
// anything fully processed, including duplicate deliveries, so the provider
// stops retrying; not-OK for signature mismatches and internal failures so it
// retries later.
func (s *ReconciliationService) HandleNotification(ctx context.Context, in payment.IncomingNotification) (Acknowledgment, error) {
	if err := s.verifier.Verify(in); err != nil {
		s.logger.Warn("rejected payment notification with bad signature",
			zap.String("order_ref", in.OrderRef),
			zap.Error(err))
		return Acknowledgment{}, err
	}

	// Fast path: a reference we have already recorded needs no transaction.
	if recorded, err := s.findRecorded(ctx, in.OrderRef); err == nil && recorded != nil {
		return Acknowledgment{OK: true, Outcome: recorded.Outcome, Replayed: true}, nil
	}

	outcome, err := payment.ParseOutcome(in.Status)
	if err != nil {
		s.logger.Warn("payment notification with unknown status",
			zap.String("order_ref", in.OrderRef),
			zap.String("status", in.Status))
		return Acknowledgment{}, err
	}

	result, err := s.reconcile(ctx, in, outcome)
	if err != nil {
		// A concurrent delivery won the insert race; its recorded outcome is
		// the answer for this delivery too.
		if errors.Is(err, shared.ErrAlreadyExists) {
			if recorded, findErr := s.notificationRepo.FindByProviderOrderRef(ctx, in.OrderRef); findErr == nil {
				return Acknowledgment{OK: true, Outcome: recorded.Outcome, Replayed: true}, nil
			}
		}
		return Acknowledgment{}, err
	}

	s.markProcessed(ctx, in.OrderRef)
	s.publishEvents(ctx, result.order)

	s.logger.Info("reconciled payment notification",
		zap.String("order_ref", in.OrderRef),
		zap.String("outcome", string(result.notification.Outcome)),
		zap.Bool("order_changed", result.changed),
		zap.Bool("needs_review", result.notification.NeedsReview))

	return Acknowledgment{OK: true, Outcome: result.notification.Outcome}, nil
}

type reconcileResult struct {
	notification *payment.Notification
	order        *order.Order
	changed      bool
}

// reconcile runs the authoritative path in one transaction: insert the
// notification under the unique index, drive the order state machine, move
// stock accordingly.
func (s *ReconciliationService) reconcile(ctx context.Context, in payment.IncomingNotification, outcome payment.Outcome) (*reconcileResult, error) {
	var result reconcileResult

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByReference(ctx, in.OrderRef)
		if err != nil {
			return err
		}

		effective := outcome
		var reviewNote string
		if expected := o.GetTotalMoney().MinorUnits(); outcome == payment.OutcomeSuccess && in.AmountMinor != expected {
			// A success notification for the wrong amount is not a payment
			// we can accept. Treat it as a failure and hold it for a human.
			effective = payment.OutcomeFailure
			reviewNote = fmt.Sprintf("amount mismatch: notified %d, order total %d minor units", in.AmountMinor, expected)
		}

		n, err := payment.NewNotification(in, o.ID, effective)
		if err != nil {
			return err
		}
		if reviewNote != "" {
			n.FlagReview(reviewNote)
			if !o.IsResolved() {
				o.FlagForReview(reviewNote)
			}
		}

		// First insert wins; a duplicate delivery collides here and the
		// caller replays the recorded outcome.
		if err := repos.NotificationRepo().Create(ctx, n); err != nil {
			return err
		}

		changed, err := o.ApplyPaymentResult(toOrderOutcome(effective), in.TxnRef)
		if err != nil {
			return err
		}
		if changed {
			if err := repos.OrderRepo().Save(ctx, o); err != nil {
				return err
			}
			for _, item := range o.Items {
				var stockErr error
				if effective == payment.OutcomeSuccess {
					stockErr = repos.StockRepo().Commit(ctx, item.ProductID, item.Quantity)
				} else {
					stockErr = repos.StockRepo().Release(ctx, item.ProductID, item.Quantity)
				}
				if stockErr != nil {
					return stockErr
				}
			}
		}

		result = reconcileResult{notification: n, order: o, changed: changed}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// findRecorded consults the cache first, then the DB
func (s *ReconciliationService) findRecorded(ctx context.Context, orderRef string) (*payment.Notification, error) {
	if s.idempotency != nil {
		seen, err := s.idempotency.IsProcessed(ctx, idempotencyKey(orderRef))
		if err == nil && !seen {
			return nil, nil
		}
		// Cache hit or cache failure: the DB decides.
	}
	n, err := s.notificationRepo.FindByProviderOrderRef(ctx, orderRef)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return n, nil
}

func (s *ReconciliationService) markProcessed(ctx context.Context, orderRef string) {
	if s.idempotency == nil {
		return
	}
	if _, err := s.idempotency.MarkProcessed(ctx, idempotencyKey(orderRef), idempotencyTTL); err != nil {
		s.logger.Warn("failed to mark notification in idempotency cache",
			zap.String("order_ref", orderRef),
			zap.Error(err))
	}
}

func (s *ReconciliationService) publishEvents(ctx context.Context, o *order.Order) {
	if s.eventPublisher == nil || o == nil {
		return
	}
	for _, event := range o.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	o.ClearDomainEvents()
}

func idempotencyKey(orderRef string) string {
	return "payment:notification:" + orderRef
}

func toOrderOutcome(outcome payment.Outcome) order.PaymentOutcome {
	if outcome == payment.OutcomeSuccess {
		return order.PaymentOutcomeSuccess
	}
	return order.PaymentOutcomeFailure
}
