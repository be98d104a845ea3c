package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Repository provides access to the catalog for checkout and admin
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Save(ctx context.Context, p *Product) error
}
