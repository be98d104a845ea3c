package payment

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// Outcome is the recorded result of a provider notification
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
)

// ParseOutcome maps the provider's status field to an Outcome
func ParseOutcome(status string) (Outcome, error) {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "SUCCESS", "PAID", "OK":
		return OutcomeSuccess, nil
	case "FAILURE", "FAILED", "CANCELLED":
		return OutcomeFailure, nil
	default:
		return "", shared.NewDomainError("INVALID_INPUT", "Unknown payment status: "+status)
	}
}

// IncomingNotification is the parsed, not yet verified callback from the
// payment provider
type IncomingNotification struct {
	OrderRef    string // merchant reference echoed by the provider
	TxnRef      string // provider-side transaction id
	Status      string // raw provider status field
	AmountMinor int64  // notified amount in minor currency units
	Currency    string
	Signature   string
	ReceivedAt  time.Time
}

// SignatureVerifier authenticates a provider notification. Implementations
// must compare digests in constant time.
type SignatureVerifier interface {
	Verify(n IncomingNotification) error
}

// Notification is the durable record of a reconciled provider notification.
// The unique index on ProviderOrderRef is the idempotency authority: the
// first insert wins and every duplicate delivery collides with it, so at most
// one notification is ever processed per order reference.
type Notification struct {
	shared.BaseEntity
	ProviderOrderRef string    `gorm:"type:varchar(32);not null;uniqueIndex"`
	ProviderTxnRef   string    `gorm:"type:varchar(100)"`
	OrderID          uuid.UUID `gorm:"type:uuid;not null;index"`
	Outcome          Outcome   `gorm:"type:varchar(10);not null"`
	AmountMinor      int64     `gorm:"not null"`
	Currency         string    `gorm:"type:varchar(3);not null"`
	NeedsReview      bool      `gorm:"not null;default:false"`
	ReviewNote       string    `gorm:"type:varchar(500)"`
	ReceivedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Notification) TableName() string {
	return "payment_notifications"
}

// NewNotification records a verified notification against an order
func NewNotification(in IncomingNotification, orderID uuid.UUID, outcome Outcome) (*Notification, error) {
	if in.OrderRef == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Provider order reference cannot be empty")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order ID cannot be empty")
	}

	receivedAt := in.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	return &Notification{
		BaseEntity:       shared.NewBaseEntity(),
		ProviderOrderRef: in.OrderRef,
		ProviderTxnRef:   in.TxnRef,
		OrderID:          orderID,
		Outcome:          outcome,
		AmountMinor:      in.AmountMinor,
		Currency:         in.Currency,
		ReceivedAt:       receivedAt,
	}, nil
}

// FlagReview marks the notification for manual follow-up, e.g. when the
// notified amount does not match the order total
func (n *Notification) FlagReview(note string) {
	n.NeedsReview = true
	n.ReviewNote = note
	n.UpdatedAt = time.Now()
}
