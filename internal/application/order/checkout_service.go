package order

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// CheckoutService creates orders and drives admin lifecycle operations
type CheckoutService struct {
	scope          TransactionScope
	orderRepo      order.Repository
	catalogRepo    catalog.Repository
	eventPublisher shared.EventPublisher
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(scope TransactionScope, orderRepo order.Repository, catalogRepo catalog.Repository) *CheckoutService {
	return &CheckoutService{
		scope:       scope,
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *CheckoutService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create validates the request, reserves stock for every item and creates the
// order in PENDING_PAYMENT. Order insert and all reservations run in one
// transaction: if any product lacks stock, nothing is persisted.
func (s *CheckoutService) Create(ctx context.Context, req CheckoutRequest) (*OrderResponse, error) {
	purchaser, err := buildPurchaser(req)
	if err != nil {
		return nil, err
	}

	address, err := buildAddress(req.Address)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	products, err := s.loadProducts(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(purchaser, address)
	if err != nil {
		return nil, err
	}
	for _, item := range req.Items {
		p := products[item.ProductID]
		if _, err := o.AddItem(p.ID, item.Quantity, p.PriceMoney()); err != nil {
			return nil, err
		}
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.OrderRepo().Create(ctx, o); err != nil {
			return err
		}
		for _, item := range o.Items {
			if err := repos.StockRepo().Reserve(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)
	response := ToOrderResponse(o)
	return &response, nil
}

// GetByID retrieves an order by ID
func (s *CheckoutService) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// Track looks an order up for a guest by reference (full or last-8 suffix)
// and contact email. A wrong email yields NOT_FOUND, indistinguishable from a
// wrong reference.
func (s *CheckoutService) Track(ctx context.Context, req TrackRequest) (*OrderResponse, error) {
	ref := strings.TrimSpace(req.Reference)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if ref == "" || email == "" {
		return nil, shared.ErrNotFound
	}

	o, err := s.orderRepo.FindByReferenceAndEmail(ctx, ref, email)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// ListByStatus lists orders in the given status for the back office
func (s *CheckoutService) ListByStatus(ctx context.Context, status order.Status, filter shared.Filter) (*shared.Paginated[OrderResponse], error) {
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown order status: "+status.String())
	}

	page, err := s.orderRepo.FindByStatus(ctx, status, filter)
	if err != nil {
		return nil, err
	}

	items := make([]OrderResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, ToOrderResponse(&page.Items[i]))
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// Cancel cancels an unpaid order and releases its reservations. Resolved
// orders are rejected with INVALID_TRANSITION.
func (s *CheckoutService) Cancel(ctx context.Context, orderID uuid.UUID, reason string) error {
	var cancelled *order.Order

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := o.Cancel(reason); err != nil {
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
		cancelled = o
		return nil
	})
	if err != nil {
		return err
	}

	s.publishEvents(ctx, cancelled)
	return nil
}

// MarkShipped records carrier pickup for a confirmed order
func (s *CheckoutService) MarkShipped(ctx context.Context, orderID uuid.UUID) error {
	return s.transition(ctx, orderID, (*order.Order).MarkShipped)
}

// MarkDelivered completes a shipped order
func (s *CheckoutService) MarkDelivered(ctx context.Context, orderID uuid.UUID) error {
	return s.transition(ctx, orderID, (*order.Order).MarkDelivered)
}

// Refund reverses a paid order
func (s *CheckoutService) Refund(ctx context.Context, orderID uuid.UUID) error {
	return s.transition(ctx, orderID, (*order.Order).Refund)
}

func (s *CheckoutService) transition(ctx context.Context, orderID uuid.UUID, apply func(*order.Order) error) error {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if err := apply(o); err != nil {
		return err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return err
	}
	s.publishEvents(ctx, o)
	return nil
}

// loadProducts resolves and validates the requested products
func (s *CheckoutService) loadProducts(ctx context.Context, items []CheckoutItemRequest) (map[uuid.UUID]*catalog.Product, error) {
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order must contain at least one item")
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_INPUT", "Item quantity must be positive")
		}
		ids = append(ids, item.ProductID)
	}

	products, err := s.catalogRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for _, item := range items {
		p, ok := byID[item.ProductID]
		if !ok {
			return nil, shared.NewDomainError("NOT_FOUND", "Unknown product: "+item.ProductID.String())
		}
		if !p.Active {
			return nil, shared.NewDomainError("INVALID_INPUT", "Product not for sale: "+p.SKU)
		}
	}
	return byID, nil
}

func (s *CheckoutService) publishEvents(ctx context.Context, o *order.Order) {
	if s.eventPublisher == nil || o == nil {
		return
	}
	for _, event := range o.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	o.ClearDomainEvents()
}

func buildPurchaser(req CheckoutRequest) (order.Purchaser, error) {
	hasUser := req.UserID != nil && *req.UserID != uuid.Nil
	hasGuest := req.GuestEmail != "" || req.GuestName != ""
	if hasUser && hasGuest {
		return order.Purchaser{}, shared.NewDomainError("INVALID_PURCHASER", "Provide either a user ID or guest contact, not both")
	}
	if hasUser {
		return order.NewUserPurchaser(*req.UserID)
	}
	return order.NewGuestPurchaser(req.GuestName, req.GuestEmail, req.GuestPhone)
}

func buildAddress(req AddressRequest) (valueobject.Address, error) {
	opts := make([]valueobject.AddressOption, 0, 3)
	if req.Line2 != "" {
		opts = append(opts, valueobject.WithLine2(req.Line2))
	}
	if req.Region != "" {
		opts = append(opts, valueobject.WithRegion(req.Region))
	}
	if req.Country != "" {
		opts = append(opts, valueobject.WithCountry(req.Country))
	}
	return valueobject.NewAddress(req.Line1, req.City, req.PostalCode, opts...)
}
