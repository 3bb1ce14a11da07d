package repositories

import (
	"context"
	"strings"
	"time"

	"qrmenu/internal/access"
	"qrmenu/internal/apperrors"
	"qrmenu/internal/models"

	"gorm.io/gorm"
)

// GORMStoreRepository is a GORM implementation of StoreRepository.
type GORMStoreRepository struct {
	db *gorm.DB
}

// NewGORMStoreRepository creates a new instance of GORMStoreRepository.
func NewGORMStoreRepository(db *gorm.DB) *GORMStoreRepository {
	return &GORMStoreRepository{db: db}
}

func (r *GORMStoreRepository) first(ctx context.Context, query string, arg any) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, query, arg).Error; err != nil {
		return nil, translate(err, "store")
	}
	return &store, nil
}

// GetByID retrieves a store by id.
func (r *GORMStoreRepository) GetByID(ctx context.Context, id string) (*models.Store, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByAdminID retrieves the store owned by an admin.
func (r *GORMStoreRepository) GetByAdminID(ctx context.Context, adminID string) (*models.Store, error) {
	return r.first(ctx, "admin_id = ?", adminID)
}

// GetBySlug retrieves a store by its public slug.
func (r *GORMStoreRepository) GetBySlug(ctx context.Context, slug string) (*models.Store, error) {
	return r.first(ctx, "slug = ?", strings.ToLower(slug))
}

// List returns the stores visible within scope: all of them for a
// superadmin, only the own store for an admin.
func (r *GORMStoreRepository) List(ctx context.Context, scope access.Scope) ([]models.Store, error) {
	q := r.db.WithContext(ctx)
	if !scope.IsUnrestricted() {
		storeID, ok := scope.StoreID()
		if !ok {
			return nil, apperrors.Forbidden("tenant_unresolved")
		}
		q = q.Where("id = ?", storeID)
	}
	var stores []models.Store
	if err := q.Order("created_at desc").Find(&stores).Error; err != nil {
		return nil, translate(err, "store")
	}
	return stores, nil
}

// SlugTaken reports whether another store already uses slug.
func (r *GORMStoreRepository) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Store{}).Where("slug = ?", slug)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, translate(err, "store")
	}
	return n > 0, nil
}

// Update writes every profile field of store, including zero values.
func (r *GORMStoreRepository) Update(ctx context.Context, scope access.Scope, store *models.Store) error {
	q := r.db.WithContext(ctx).Model(store)
	if !scope.IsUnrestricted() {
		storeID, ok := scope.StoreID()
		if !ok {
			return apperrors.Forbidden("tenant_unresolved")
		}
		q = q.Where("id = ?", storeID)
	}
	res := q.Select("*").Omit("id", "admin_id", "slug", "public_id", "created_at").Updates(store)
	if res.Error != nil {
		return translate(res.Error, "store")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("store")
	}
	return nil
}

// UpdateSlug changes the public slug.
func (r *GORMStoreRepository) UpdateSlug(ctx context.Context, id, slug string) error {
	res := r.db.WithContext(ctx).Model(&models.Store{}).Where("id = ?", id).Update("slug", slug)
	if res.Error != nil {
		return translate(res.Error, "store")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("store")
	}
	return nil
}

// TouchLastActive stamps the store's last activity time.
func (r *GORMStoreRepository) TouchLastActive(ctx context.Context, id string, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Store{}).Where("id = ?", id).UpdateColumn("last_active_at", at).Error
	return translate(err, "store")
}
