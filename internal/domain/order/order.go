package order

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Status represents the lifecycle status of an order
type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusPaid           Status = "PAID"
	StatusProcessing     Status = "PROCESSING"
	StatusShipped        Status = "SHIPPED"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
	StatusRefunded       Status = "REFUNDED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPendingPayment, StatusPaid, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for states that permit no further transition
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusRefunded
}

// CanTransitionTo checks if the status can transition to the target status.
// This table is the single authority on order lifecycle; status is never
// assigned outside the transition methods below.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPendingPayment:
		return target == StatusPaid || target == StatusCancelled
	case StatusPaid:
		return target == StatusProcessing || target == StatusRefunded
	case StatusProcessing:
		return target == StatusShipped || target == StatusRefunded
	case StatusShipped:
		return target == StatusDelivered
	case StatusDelivered, StatusCancelled, StatusRefunded:
		return false
	}
	return false
}

// PaymentOutcome is the parsed result of a payment-provider notification
type PaymentOutcome string

const (
	PaymentOutcomeSuccess PaymentOutcome = "SUCCESS"
	PaymentOutcomeFailure PaymentOutcome = "FAILURE"
)

// Purchaser identifies who placed the order: either an authenticated user or
// a guest contact tuple, never both
type Purchaser struct {
	UserID     *uuid.UUID `gorm:"type:uuid;index"`
	GuestName  string     `gorm:"type:varchar(200)"`
	GuestEmail string     `gorm:"type:varchar(200);index"`
	GuestPhone string     `gorm:"type:varchar(50)"`
}

// NewUserPurchaser creates a purchaser backed by an authenticated user
func NewUserPurchaser(userID uuid.UUID) (Purchaser, error) {
	if userID == uuid.Nil {
		return Purchaser{}, shared.NewDomainError("INVALID_PURCHASER", "User ID cannot be empty")
	}
	return Purchaser{UserID: &userID}, nil
}

// NewGuestPurchaser creates a purchaser from a guest contact tuple
func NewGuestPurchaser(name, email, phone string) (Purchaser, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return Purchaser{}, shared.NewDomainError("INVALID_PURCHASER", "Guest name cannot be empty")
	}
	if email == "" || !strings.Contains(email, "@") {
		return Purchaser{}, shared.NewDomainError("INVALID_PURCHASER", "Guest email is not valid")
	}
	return Purchaser{GuestName: name, GuestEmail: email, GuestPhone: strings.TrimSpace(phone)}, nil
}

// IsGuest returns true if the purchaser is a guest contact
func (p Purchaser) IsGuest() bool {
	return p.UserID == nil
}

// Validate checks the exactly-one-of invariant
func (p Purchaser) Validate() error {
	hasUser := p.UserID != nil && *p.UserID != uuid.Nil
	hasGuest := p.GuestEmail != ""
	if hasUser == hasGuest {
		return shared.NewDomainError("INVALID_PURCHASER", "Exactly one of user ID or guest contact must be set")
	}
	return nil
}

// Item is a line item with the unit price snapshotted at order time.
// Later catalog price changes never touch it.
type Item struct {
	shared.BaseEntity
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  int64           `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "order_items"
}

// NewItem creates a line item for an order
func NewItem(orderID, productID uuid.UUID, qty int64, unitPrice valueobject.Money) (*Item, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if qty <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &Item{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    orderID,
		ProductID:  productID,
		Quantity:   qty,
		UnitPrice:  unitPrice.Amount(),
		Amount:     unitPrice.MultiplyByInt(qty).Amount(),
	}, nil
}

// Order is the aggregate root owning an order's lifecycle. It is created at
// checkout and mutated only through the transition methods; cancellation is a
// terminal status, never a row deletion.
type Order struct {
	shared.BaseAggregateRoot
	Reference   string    `gorm:"type:varchar(32);not null;uniqueIndex"` // merchant reference shared with the payment provider
	Purchaser   Purchaser `gorm:"embedded"`
	Items       []Item              `gorm:"foreignKey:OrderID;references:ID"`
	TotalAmount decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Currency    string              `gorm:"type:varchar(3);not null;default:'USD'"`
	Status      Status              `gorm:"type:varchar(20);not null;index"`
	Address     valueobject.Address `gorm:"type:jsonb"`
	PaymentRef  *string             `gorm:"type:varchar(100)"` // provider transaction id, set by reconciliation
	ShippingRef *string             `gorm:"type:varchar(100)"` // aggregator shipment id, set on confirm
	ReviewNote  string              `gorm:"type:varchar(500)"` // set when a notification is flagged for manual review
	PaidAt      *time.Time
	ShippedAt   *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
	RefundedAt  *time.Time
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates an order in PENDING_PAYMENT with a fresh merchant reference
func NewOrder(purchaser Purchaser, address valueobject.Address) (*Order, error) {
	if err := purchaser.Validate(); err != nil {
		return nil, err
	}
	if address.IsEmpty() {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Shipping address is required")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Reference:         newReference(),
		Purchaser:         purchaser,
		Items:             make([]Item, 0),
		TotalAmount:       decimal.Zero,
		Currency:          string(valueobject.DefaultCurrency),
		Status:            StatusPendingPayment,
		Address:           address,
	}

	o.AddDomainEvent(NewOrderCreatedEvent(o))
	return o, nil
}

// AddItem adds a line item; only possible before the order is resolved
func (o *Order) AddItem(productID uuid.UUID, qty int64, unitPrice valueobject.Money) (*Item, error) {
	if o.Status != StatusPendingPayment {
		return nil, shared.NewDomainError("INVALID_TRANSITION", "Cannot add items to a resolved order")
	}
	for _, item := range o.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already present in order")
		}
	}

	item, err := NewItem(o.ID, productID, qty, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	o.UpdatedAt = time.Now()
	return item, nil
}

// ApplyPaymentResult resolves a pending order from a verified payment outcome.
// Success transitions to PAID; failure to CANCELLED. If the order is no longer
// PENDING_PAYMENT the call is a no-op returning changed=false - this is the
// guard that makes duplicate notifications and the abandonment sweep safe.
// Only the reconciliation service and the sweep call this.
func (o *Order) ApplyPaymentResult(outcome PaymentOutcome, paymentRef string) (changed bool, err error) {
	if o.Status != StatusPendingPayment {
		return false, nil
	}

	now := time.Now()
	switch outcome {
	case PaymentOutcomeSuccess:
		o.Status = StatusPaid
		o.PaidAt = &now
		if paymentRef != "" {
			o.PaymentRef = &paymentRef
		}
		o.AddDomainEvent(NewOrderPaidEvent(o))
	case PaymentOutcomeFailure:
		o.Status = StatusCancelled
		o.CancelledAt = &now
		if paymentRef != "" {
			o.PaymentRef = &paymentRef
		}
		o.AddDomainEvent(NewOrderCancelledEvent(o, "payment failed"))
	default:
		return false, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown payment outcome %q", outcome))
	}

	o.UpdatedAt = now
	o.IncrementVersion()
	return true, nil
}

// FlagForReview records why the order needs manual attention (e.g. the
// notified amount did not match the order total)
func (o *Order) FlagForReview(note string) {
	o.ReviewNote = note
	o.UpdatedAt = time.Now()
}

// ConfirmShipment records the confirmed shipment and moves the order to
// PROCESSING; only allowed after payment
func (o *Order) ConfirmShipment(shippingRef string) error {
	if !o.Status.CanTransitionTo(StatusProcessing) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot confirm shipment for order in %s status", o.Status))
	}
	if shippingRef == "" {
		return shared.NewDomainError("INVALID_INPUT", "Shipping reference cannot be empty")
	}

	o.Status = StatusProcessing
	o.ShippingRef = &shippingRef
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderShipmentConfirmedEvent(o, shippingRef))
	return nil
}

// MarkShipped records the carrier pickup
func (o *Order) MarkShipped() error {
	if !o.Status.CanTransitionTo(StatusShipped) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot ship order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = StatusShipped
	o.ShippedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderShippedEvent(o))
	return nil
}

// MarkDelivered completes the order
func (o *Order) MarkDelivered() error {
	if !o.Status.CanTransitionTo(StatusDelivered) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot deliver order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = StatusDelivered
	o.DeliveredAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderDeliveredEvent(o))
	return nil
}

// Cancel cancels an order that has not been paid yet (admin action).
// Paid orders go through Refund instead.
func (o *Order) Cancel(reason string) error {
	if o.Status != StatusPendingPayment {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderCancelledEvent(o, reason))
	return nil
}

// Refund reverses a paid order post hoc
func (o *Order) Refund() error {
	if !o.Status.CanTransitionTo(StatusRefunded) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot refund order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = StatusRefunded
	o.RefundedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderRefundedEvent(o))
	return nil
}

// MatchesReference reports whether ref identifies this order: either the full
// merchant reference or its last-8-character suffix (printed on receipts)
func (o *Order) MatchesReference(ref string) bool {
	ref = strings.ToUpper(strings.TrimSpace(ref))
	if ref == "" {
		return false
	}
	if ref == o.Reference {
		return true
	}
	return len(ref) == referenceSuffixLen && strings.HasSuffix(o.Reference, ref)
}

// GetTotalMoney returns the order total as Money
func (o *Order) GetTotalMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(o.TotalAmount, valueobject.Currency(o.Currency))
	return m
}

// IsResolved returns true once the pending payment has been decided either way
func (o *Order) IsResolved() bool {
	return o.Status != StatusPendingPayment
}

// recalculateTotal recomputes the order total from its items
func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount)
	}
	o.TotalAmount = total
}

// referenceSuffixLen is the short-reference length printed on receipts and
// accepted by the guest tracking endpoint
const referenceSuffixLen = 8

// newReference generates an opaque merchant reference shared with the
// payment provider
func newReference() string {
	b := make([]byte, 12)
	rand.Read(b)
	return strings.ToUpper(hex.EncodeToString(b))
}
