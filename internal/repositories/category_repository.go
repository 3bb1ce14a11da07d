package repositories

import (
	"context"

	"qrmenu/internal/access"
	"qrmenu/internal/models"
)

// CategoryRepository defines data access for categories. Every write and
// list takes the caller's tenant scope.
type CategoryRepository interface {
	Create(ctx context.Context, scope access.Scope, category *models.Category) error
	GetByID(ctx context.Context, id string) (*models.Category, error)
	List(ctx context.Context, scope access.Scope) ([]models.Category, error)
	ListByStore(ctx context.Context, storeID string) ([]models.Category, error)
	NameTaken(ctx context.Context, storeID *string, name, excludeID string) (bool, error)
	Update(ctx context.Context, scope access.Scope, category *models.Category) error
	Delete(ctx context.Context, scope access.Scope, id string) error
}
