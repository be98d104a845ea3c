package stock

import (
	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// Event types for the stock ledger
const (
	EventTypeStockReserved       = "stock.reserved"
	EventTypeStockCommitted      = "stock.committed"
	EventTypeStockReleased       = "stock.released"
	EventTypeStockBelowThreshold = "stock.below_threshold"
)

const aggregateType = "StockItem"

// StockReservedEvent is emitted when stock is held for a pending order
type StockReservedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	OrderID   uuid.UUID `json:"order_id"`
	Available int64     `json:"available"`
}

// NewStockReservedEvent creates a new StockReservedEvent
func NewStockReservedEvent(item *StockItem, qty int64, orderID uuid.UUID) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReserved, aggregateType, item.ID),
		ProductID:       item.ProductID,
		Quantity:        qty,
		OrderID:         orderID,
		Available:       item.AvailableQuantity(),
	}
}

// StockCommittedEvent is emitted when a reservation becomes a sale
type StockCommittedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	OrderID   uuid.UUID `json:"order_id"`
	Sold      int64     `json:"sold"`
}

// NewStockCommittedEvent creates a new StockCommittedEvent
func NewStockCommittedEvent(item *StockItem, qty int64, orderID uuid.UUID) *StockCommittedEvent {
	return &StockCommittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockCommitted, aggregateType, item.ID),
		ProductID:       item.ProductID,
		Quantity:        qty,
		OrderID:         orderID,
		Sold:            item.SoldQuantity,
	}
}

// StockReleasedEvent is emitted when a reservation returns to the available pool
type StockReleasedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	OrderID   uuid.UUID `json:"order_id"`
	Available int64     `json:"available"`
}

// NewStockReleasedEvent creates a new StockReleasedEvent
func NewStockReleasedEvent(item *StockItem, qty int64, orderID uuid.UUID) *StockReleasedEvent {
	return &StockReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReleased, aggregateType, item.ID),
		ProductID:       item.ProductID,
		Quantity:        qty,
		OrderID:         orderID,
		Available:       item.AvailableQuantity(),
	}
}

// StockBelowThresholdEvent is emitted when availability drops under the alert threshold
type StockBelowThresholdEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Available int64     `json:"available"`
	Threshold int64     `json:"threshold"`
}

// NewStockBelowThresholdEvent creates a new StockBelowThresholdEvent
func NewStockBelowThresholdEvent(item *StockItem) *StockBelowThresholdEvent {
	return &StockBelowThresholdEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowThreshold, aggregateType, item.ID),
		ProductID:       item.ProductID,
		Available:       item.AvailableQuantity(),
		Threshold:       item.MinQuantity,
	}
}
