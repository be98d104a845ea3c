package shipping

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shared"
)

// QuoteStatus is the lifecycle status of a quote request
type QuoteStatus string

const (
	QuoteStatusOpen      QuoteStatus = "OPEN"
	QuoteStatusConfirmed QuoteStatus = "CONFIRMED"
	QuoteStatusExpired   QuoteStatus = "EXPIRED"
)

// Candidate is one carrier offer returned by the rate aggregator
type Candidate struct {
	ID          string          `json:"id"` // aggregator-assigned offer id
	Carrier     string          `json:"carrier"`
	Service     string          `json:"service"`
	Cost        decimal.Decimal `json:"cost"`
	Currency    string          `json:"currency"`
	EstimateDay int             `json:"estimate_days"` // transit estimate in days
}

// Candidates is a JSON-persisted list of carrier offers
type Candidates []Candidate

// Value implements driver.Valuer
func (c Candidates) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner
func (c *Candidates) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("cannot scan %T into Candidates", value)
	}
}

// Quote is the aggregate holding carrier offers fetched for a paid order.
// Offers are valid until ExpiresAt; confirming one books the shipment.
type Quote struct {
	shared.BaseAggregateRoot
	OrderID     uuid.UUID   `gorm:"type:uuid;not null;index"`
	Status      QuoteStatus `gorm:"type:varchar(10);not null"`
	Candidates  Candidates  `gorm:"type:jsonb"`
	ChosenID    string      `gorm:"type:varchar(100)"` // confirmed candidate id
	ShipmentRef string      `gorm:"type:varchar(100)"` // aggregator booking reference
	ExpiresAt   time.Time   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Quote) TableName() string {
	return "shipping_quotes"
}

// NewQuote creates an open quote from aggregator offers
func NewQuote(orderID uuid.UUID, candidates []Candidate, ttl time.Duration) (*Quote, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order ID cannot be empty")
	}
	if len(candidates) == 0 {
		return nil, shared.NewDomainError("NO_CANDIDATES", "Aggregator returned no carrier offers")
	}
	if ttl <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Quote TTL must be positive")
	}

	return &Quote{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		Status:            QuoteStatusOpen,
		Candidates:        candidates,
		ExpiresAt:         time.Now().Add(ttl),
	}, nil
}

// Candidate returns the offer with the given id
func (q *Quote) Candidate(id string) (*Candidate, bool) {
	for i := range q.Candidates {
		if q.Candidates[i].ID == id {
			return &q.Candidates[i], true
		}
	}
	return nil, false
}

// IsExpired returns true once the offers are no longer bookable
func (q *Quote) IsExpired(now time.Time) bool {
	return q.Status == QuoteStatusExpired || (q.Status == QuoteStatusOpen && now.After(q.ExpiresAt))
}

// Confirm books the candidate and records the shipment reference.
// Confirming the same candidate again is a no-op that returns the reference
// already recorded, so a retried confirmation request never double-books.
// Confirming a different candidate after one is booked is rejected.
func (q *Quote) Confirm(candidateID, shipmentRef string, now time.Time) (string, error) {
	if q.Status == QuoteStatusConfirmed {
		if q.ChosenID == candidateID {
			return q.ShipmentRef, nil
		}
		return "", shared.NewDomainError("QUOTE_CONFLICT",
			fmt.Sprintf("Quote already confirmed with candidate %s", q.ChosenID))
	}
	if q.IsExpired(now) {
		return "", shared.NewDomainError("QUOTE_EXPIRED", "Quote offers have expired")
	}
	if _, ok := q.Candidate(candidateID); !ok {
		return "", shared.NewDomainError("NOT_FOUND", "Unknown quote candidate: "+candidateID)
	}
	if shipmentRef == "" {
		return "", shared.NewDomainError("INVALID_INPUT", "Shipment reference cannot be empty")
	}

	q.Status = QuoteStatusConfirmed
	q.ChosenID = candidateID
	q.ShipmentRef = shipmentRef
	q.UpdatedAt = now
	q.IncrementVersion()
	return shipmentRef, nil
}

// Expire marks an open quote expired
func (q *Quote) Expire(now time.Time) {
	if q.Status != QuoteStatusOpen {
		return
	}
	q.Status = QuoteStatusExpired
	q.UpdatedAt = now
	q.IncrementVersion()
}
