package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/order"
)

// CheckoutItemRequest is one requested line item
type CheckoutItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int64     `json:"quantity" validate:"required,gt=0"`
}

// AddressRequest is the shipping address payload
type AddressRequest struct {
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2"`
	City       string `json:"city" validate:"required"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"omitempty,len=2"`
}

// CheckoutRequest creates an order. Exactly one of UserID or the guest
// contact fields must be provided.
type CheckoutRequest struct {
	UserID     *uuid.UUID            `json:"user_id"`
	GuestName  string                `json:"guest_name"`
	GuestEmail string                `json:"guest_email" validate:"omitempty,email"`
	GuestPhone string                `json:"guest_phone"`
	Items      []CheckoutItemRequest `json:"items" validate:"required,min=1,dive"`
	Address    AddressRequest        `json:"address" validate:"required"`
}

// TrackRequest is the guest order lookup payload
type TrackRequest struct {
	Reference string `json:"reference" form:"reference" validate:"required"`
	Email     string `json:"email" form:"email" validate:"required,email"`
}

// OrderItemResponse is one order line in API responses
type OrderItemResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
	Amount    string    `json:"amount"`
}

// OrderResponse is the API representation of an order
type OrderResponse struct {
	ID          uuid.UUID           `json:"id"`
	Reference   string              `json:"reference"`
	Status      string              `json:"status"`
	Items       []OrderItemResponse `json:"items"`
	TotalAmount string              `json:"total_amount"`
	Currency    string              `json:"currency"`
	ShippingRef *string             `json:"shipping_ref,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	PaidAt      *time.Time          `json:"paid_at,omitempty"`
	ShippedAt   *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt *time.Time          `json:"cancelled_at,omitempty"`
}

// ToOrderResponse converts a domain order to its API representation
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Amount:    item.Amount.StringFixed(2),
		})
	}

	return OrderResponse{
		ID:          o.ID,
		Reference:   o.Reference,
		Status:      o.Status.String(),
		Items:       items,
		TotalAmount: o.TotalAmount.StringFixed(2),
		Currency:    o.Currency,
		ShippingRef: o.ShippingRef,
		CreatedAt:   o.CreatedAt,
		PaidAt:      o.PaidAt,
		ShippedAt:   o.ShippedAt,
		DeliveredAt: o.DeliveredAt,
		CancelledAt: o.CancelledAt,
	}
}
