package shipping

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shipping"
)

// QuoteBroker fetches carrier rates for paid orders and books the chosen
// offer. Aggregator failures never leave partial local state: a failed rate
// request writes nothing, and a failed booking leaves the quote open.
type QuoteBroker struct {
	aggregator     shipping.Aggregator
	quoteRepo      shipping.Repository
	orderRepo      order.Repository
	catalogRepo    catalog.Repository
	quoteTTL       time.Duration
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewQuoteBroker creates a new QuoteBroker
func NewQuoteBroker(
	aggregator shipping.Aggregator,
	quoteRepo shipping.Repository,
	orderRepo order.Repository,
	catalogRepo catalog.Repository,
	quoteTTL time.Duration,
	logger *zap.Logger,
) *QuoteBroker {
	if quoteTTL <= 0 {
		quoteTTL = 30 * time.Minute
	}
	return &QuoteBroker{
		aggregator:  aggregator,
		quoteRepo:   quoteRepo,
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
		quoteTTL:    quoteTTL,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (b *QuoteBroker) SetEventPublisher(publisher shared.EventPublisher) {
	b.eventPublisher = publisher
}

// RequestQuotes asks the aggregator for carrier offers on a paid order and
// persists them as an open quote. Safe to retry: an upstream failure writes
// nothing, and a repeat call simply creates a fresh quote.
func (b *QuoteBroker) RequestQuotes(ctx context.Context, orderID uuid.UUID) (*QuoteResponse, error) {
	o, err := b.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != order.StatusPaid {
		return nil, shared.NewDomainError("INVALID_TRANSITION",
			"Shipping quotes require a paid order, current status: "+o.Status.String())
	}

	req, err := b.rateRequestFor(ctx, o)
	if err != nil {
		return nil, err
	}
	candidates, err := b.aggregator.RequestRates(ctx, req)
	if err != nil {
		b.logger.Warn("carrier aggregator rate request failed",
			zap.String("order_ref", o.Reference),
			zap.Error(err))
		return nil, err
	}

	q, err := shipping.NewQuote(o.ID, candidates, b.quoteTTL)
	if err != nil {
		return nil, err
	}
	if err := b.quoteRepo.Create(ctx, q); err != nil {
		return nil, err
	}

	response := ToQuoteResponse(q)
	return &response, nil
}

// Confirm books a quoted offer and records the shipment on the order.
// Confirming an already-confirmed quote with the same candidate returns the
// existing booking without calling the aggregator again.
func (b *QuoteBroker) Confirm(ctx context.Context, quoteID uuid.UUID, candidateID string) (*ConfirmationResponse, error) {
	q, err := b.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if q.Status == shipping.QuoteStatusConfirmed {
		if _, err := q.Confirm(candidateID, q.ShipmentRef, time.Now()); err != nil {
			return nil, err
		}
		response := ToConfirmationResponse(q)
		return &response, nil
	}

	if _, ok := q.Candidate(candidateID); !ok {
		return nil, shared.NewDomainError("NOT_FOUND", "Unknown quote candidate: "+candidateID)
	}
	if q.IsExpired(time.Now()) {
		return nil, shared.NewDomainError("QUOTE_EXPIRED", "Quote offers have expired")
	}

	shipmentRef, err := b.aggregator.Book(ctx, candidateID)
	if err != nil {
		b.logger.Warn("carrier aggregator booking failed",
			zap.String("quote_id", q.ID.String()),
			zap.String("candidate_id", candidateID),
			zap.Error(err))
		return nil, err
	}

	if _, err := q.Confirm(candidateID, shipmentRef, time.Now()); err != nil {
		return nil, err
	}
	if err := b.quoteRepo.Save(ctx, q); err != nil {
		return nil, err
	}

	o, err := b.orderRepo.FindByID(ctx, q.OrderID)
	if err != nil {
		return nil, err
	}
	if err := o.ConfirmShipment(shipmentRef); err != nil {
		return nil, err
	}
	if err := b.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	b.publishEvents(ctx, o)

	response := ToConfirmationResponse(q)
	return &response, nil
}

// GetLatestForOrder returns the most recent quote for an order
func (b *QuoteBroker) GetLatestForOrder(ctx context.Context, orderID uuid.UUID) (*QuoteResponse, error) {
	q, err := b.quoteRepo.FindLatestByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToQuoteResponse(q)
	return &response, nil
}

func (b *QuoteBroker) publishEvents(ctx context.Context, o *order.Order) {
	if b.eventPublisher == nil {
		return
	}
	for _, event := range o.GetDomainEvents() {
		_ = b.eventPublisher.Publish(ctx, event)
	}
	o.ClearDomainEvents()
}

// rateRequestFor builds the shipment description, summing catalog weights
func (b *QuoteBroker) rateRequestFor(ctx context.Context, o *order.Order) (shipping.RateRequest, error) {
	ids := make([]uuid.UUID, 0, len(o.Items))
	for _, item := range o.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := b.catalogRepo.FindByIDs(ctx, ids)
	if err != nil {
		return shipping.RateRequest{}, err
	}
	weights := make(map[uuid.UUID]int64, len(products))
	for _, p := range products {
		weights[p.ID] = p.WeightGrams
	}

	var count, grams int64
	for _, item := range o.Items {
		count += item.Quantity
		grams += weights[item.ProductID] * item.Quantity
	}
	return shipping.RateRequest{
		OrderRef:    o.Reference,
		Destination: o.Address,
		WeightGrams: grams,
		ItemCount:   count,
	}, nil
}
