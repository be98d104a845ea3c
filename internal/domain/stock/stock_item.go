package stock

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// StockItem is the per-product row of the reservation ledger.
// All stock numbers in the system are owned by this aggregate: total stock on
// hand, the quantity reserved by orders awaiting payment, and the quantity
// sold by paid orders. Available stock is always derived, never stored.
type StockItem struct {
	shared.BaseAggregateRoot
	ProductID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	TotalQuantity    int64     `gorm:"not null;default:0"`
	ReservedQuantity int64     `gorm:"not null;default:0"`
	SoldQuantity     int64     `gorm:"not null;default:0"`
	MinQuantity      int64     `gorm:"not null;default:0"` // low-stock alert threshold
}

// TableName returns the table name for GORM
func (StockItem) TableName() string {
	return "stock_items"
}

// NewStockItem creates a ledger row for a product
func NewStockItem(productID uuid.UUID, totalQuantity int64) (*StockItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if totalQuantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Total quantity cannot be negative")
	}

	return &StockItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		TotalQuantity:     totalQuantity,
	}, nil
}

// AvailableQuantity returns the quantity available for new reservations
func (s *StockItem) AvailableQuantity() int64 {
	return s.TotalQuantity - s.ReservedQuantity - s.SoldQuantity
}

// CanFulfill returns true if the available quantity covers the requested quantity
func (s *StockItem) CanFulfill(qty int64) bool {
	return qty > 0 && s.AvailableQuantity() >= qty
}

// Reserve places a hold on available stock for an order awaiting payment
func (s *StockItem) Reserve(qty int64, orderID uuid.UUID) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Reserve quantity must be positive")
	}
	if s.AvailableQuantity() < qty {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock for product %s: requested %d, available %d", s.ProductID, qty, s.AvailableQuantity()))
	}

	s.ReservedQuantity += qty
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewStockReservedEvent(s, qty, orderID))
	return nil
}

// Commit converts a reservation into a sale after payment succeeds
func (s *StockItem) Commit(qty int64, orderID uuid.UUID) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Commit quantity must be positive")
	}
	if s.ReservedQuantity < qty {
		return shared.NewDomainError("INVARIANT_VIOLATION",
			fmt.Sprintf("Cannot commit %d units for product %s: only %d reserved", qty, s.ProductID, s.ReservedQuantity))
	}

	s.ReservedQuantity -= qty
	s.SoldQuantity += qty
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewStockCommittedEvent(s, qty, orderID))

	if s.MinQuantity > 0 && s.AvailableQuantity() < s.MinQuantity {
		s.AddDomainEvent(NewStockBelowThresholdEvent(s))
	}
	return nil
}

// Release returns a reservation to the available pool after payment fails,
// the order is cancelled, or the checkout is abandoned
func (s *StockItem) Release(qty int64, orderID uuid.UUID) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Release quantity must be positive")
	}
	if s.ReservedQuantity < qty {
		return shared.NewDomainError("INVARIANT_VIOLATION",
			fmt.Sprintf("Cannot release %d units for product %s: only %d reserved", qty, s.ProductID, s.ReservedQuantity))
	}

	s.ReservedQuantity -= qty
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewStockReleasedEvent(s, qty, orderID))
	return nil
}

// Restock increases total stock on hand (receiving, returns to inventory)
func (s *StockItem) Restock(qty int64) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Restock quantity must be positive")
	}

	s.TotalQuantity += qty
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// SetMinQuantity sets the low-stock alert threshold
func (s *StockItem) SetMinQuantity(qty int64) error {
	if qty < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Minimum quantity cannot be negative")
	}
	s.MinQuantity = qty
	s.UpdatedAt = time.Now()
	return nil
}

// CheckInvariant verifies the ledger accounting identity for this row.
// A violation is a defect signal, never a normal runtime condition.
func (s *StockItem) CheckInvariant() error {
	if s.ReservedQuantity < 0 || s.SoldQuantity < 0 || s.TotalQuantity < 0 {
		return shared.NewDomainError("INVARIANT_VIOLATION",
			fmt.Sprintf("Negative stock counter for product %s", s.ProductID))
	}
	if s.ReservedQuantity+s.SoldQuantity > s.TotalQuantity {
		return shared.NewDomainError("INVARIANT_VIOLATION",
			fmt.Sprintf("reserved+sold exceeds total for product %s: %d+%d > %d",
				s.ProductID, s.ReservedQuantity, s.SoldQuantity, s.TotalQuantity))
	}
	return nil
}

// IsBelowMinimum returns true if available stock is below the alert threshold
func (s *StockItem) IsBelowMinimum() bool {
	return s.MinQuantity > 0 && s.AvailableQuantity() < s.MinQuantity
}

// Snapshot is a read-only view of the ledger counters for one product
type Snapshot struct {
	ProductID uuid.UUID `json:"product_id"`
	Total     int64     `json:"total"`
	Reserved  int64     `json:"reserved"`
	Sold      int64     `json:"sold"`
	Available int64     `json:"available"`
}

// Snapshot returns the current counters as a read-only view
func (s *StockItem) Snapshot() Snapshot {
	return Snapshot{
		ProductID: s.ProductID,
		Total:     s.TotalQuantity,
		Reserved:  s.ReservedQuantity,
		Sold:      s.SoldQuantity,
		Available: s.AvailableQuantity(),
	}
}
