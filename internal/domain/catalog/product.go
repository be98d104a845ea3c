package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Product is the sellable catalog entry. Checkout snapshots its price onto
// the order line; later price edits never touch existing orders.
type Product struct {
	shared.BaseAggregateRoot
	SKU         string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency    string          `gorm:"type:varchar(3);not null;default:'USD'"`
	WeightGrams int64           `gorm:"not null;default:0"`
	Active      bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates an active catalog product
func NewProduct(sku, name string, price valueobject.Money) (*Product, error) {
	sku = strings.TrimSpace(sku)
	name = strings.TrimSpace(name)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product price cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Name:              name,
		Price:             price.Amount(),
		Currency:          string(price.Currency()),
		Active:            true,
	}, nil
}

// PriceMoney returns the current price as Money
func (p *Product) PriceMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(p.Price, valueobject.Currency(p.Currency))
	return m
}

// Deactivate takes the product off sale without deleting it
func (p *Product) Deactivate() {
	p.Active = false
}
