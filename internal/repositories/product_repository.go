package repositories

import (
	"context"

	"qrmenu/internal/access"
	"qrmenu/internal/models"
)

// ProductFilter narrows a product listing.
type ProductFilter struct {
	CategoryID string
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Create(ctx context.Context, scope access.Scope, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, scope access.Scope, filter ProductFilter) ([]models.Product, error)
	ListAvailableByStore(ctx context.Context, storeID string) ([]models.Product, error)
	Update(ctx context.Context, scope access.Scope, product *models.Product) error
	Delete(ctx context.Context, scope access.Scope, id string) error
}
