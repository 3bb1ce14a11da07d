package repositories

import (
	"context"
	"time"

	"qrmenu/internal/access"
	"qrmenu/internal/models"
)

// StoreRepository defines data access for stores (tenants).
type StoreRepository interface {
	GetByID(ctx context.Context, id string) (*models.Store, error)
	GetByAdminID(ctx context.Context, adminID string) (*models.Store, error)
	GetBySlug(ctx context.Context, slug string) (*models.Store, error)
	List(ctx context.Context, scope access.Scope) ([]models.Store, error)
	SlugTaken(ctx context.Context, slug, excludeID string) (bool, error)
	// Update writes profile fields; slug, admin and public id are not touched.
	Update(ctx context.Context, scope access.Scope, store *models.Store) error
	UpdateSlug(ctx context.Context, id, slug string) error
	TouchLastActive(ctx context.Context, id string, at time.Time) error
}
