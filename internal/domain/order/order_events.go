package order

import (
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shared"
)

// Event types for the order lifecycle
const (
	EventTypeOrderCreated           = "order.created"
	EventTypeOrderPaid              = "order.paid"
	EventTypeOrderCancelled         = "order.cancelled"
	EventTypeOrderShipmentConfirmed = "order.shipment_confirmed"
	EventTypeOrderShipped           = "order.shipped"
	EventTypeOrderDelivered         = "order.delivered"
	EventTypeOrderRefunded          = "order.refunded"
)

const aggregateType = "Order"

// OrderCreatedEvent is emitted when checkout creates a pending order
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	Reference   string          `json:"reference"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
	ItemCount   int             `json:"item_count"`
	Guest       bool            `json:"guest"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, aggregateType, o.ID),
		Reference:       o.Reference,
		TotalAmount:     o.TotalAmount,
		Currency:        o.Currency,
		ItemCount:       len(o.Items),
		Guest:           o.Purchaser.IsGuest(),
	}
}

// OrderPaidEvent is emitted when reconciliation confirms payment
type OrderPaidEvent struct {
	shared.BaseDomainEvent
	Reference   string          `json:"reference"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaymentRef  string          `json:"payment_ref,omitempty"`
}

// NewOrderPaidEvent creates a new OrderPaidEvent
func NewOrderPaidEvent(o *Order) *OrderPaidEvent {
	e := &OrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaid, aggregateType, o.ID),
		Reference:       o.Reference,
		TotalAmount:     o.TotalAmount,
	}
	if o.PaymentRef != nil {
		e.PaymentRef = *o.PaymentRef
	}
	return e
}

// OrderCancelledEvent is emitted when a pending order is cancelled, whether by
// payment failure, admin action, or the abandonment sweep
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	Reference string `json:"reference"`
	Reason    string `json:"reason"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(o *Order, reason string) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, aggregateType, o.ID),
		Reference:       o.Reference,
		Reason:          reason,
	}
}

// OrderShipmentConfirmedEvent is emitted when a shipping quote is confirmed
// for a paid order
type OrderShipmentConfirmedEvent struct {
	shared.BaseDomainEvent
	Reference   string `json:"reference"`
	ShippingRef string `json:"shipping_ref"`
}

// NewOrderShipmentConfirmedEvent creates a new OrderShipmentConfirmedEvent
func NewOrderShipmentConfirmedEvent(o *Order, shippingRef string) *OrderShipmentConfirmedEvent {
	return &OrderShipmentConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderShipmentConfirmed, aggregateType, o.ID),
		Reference:       o.Reference,
		ShippingRef:     shippingRef,
	}
}

// OrderShippedEvent is emitted at carrier pickup
type OrderShippedEvent struct {
	shared.BaseDomainEvent
	Reference string `json:"reference"`
}

// NewOrderShippedEvent creates a new OrderShippedEvent
func NewOrderShippedEvent(o *Order) *OrderShippedEvent {
	return &OrderShippedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderShipped, aggregateType, o.ID),
		Reference:       o.Reference,
	}
}

// OrderDeliveredEvent is emitted when delivery completes the order
type OrderDeliveredEvent struct {
	shared.BaseDomainEvent
	Reference string `json:"reference"`
}

// NewOrderDeliveredEvent creates a new OrderDeliveredEvent
func NewOrderDeliveredEvent(o *Order) *OrderDeliveredEvent {
	return &OrderDeliveredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDelivered, aggregateType, o.ID),
		Reference:       o.Reference,
	}
}

// OrderRefundedEvent is emitted when a paid order is refunded
type OrderRefundedEvent struct {
	shared.BaseDomainEvent
	Reference   string          `json:"reference"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderRefundedEvent creates a new OrderRefundedEvent
func NewOrderRefundedEvent(o *Order) *OrderRefundedEvent {
	return &OrderRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderRefunded, aggregateType, o.ID),
		Reference:       o.Reference,
		TotalAmount:     o.TotalAmount,
	}
}
