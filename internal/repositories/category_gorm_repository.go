package repositories

import (
	"context"
	"strings"

	"qrmenu/internal/access"
	"qrmenu/internal/apperrors"
	"qrmenu/internal/models"

	"gorm.io/gorm"
)

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

// Create inserts a category bound to the scope's store.
func (r *GORMCategoryRepository) Create(ctx context.Context, scope access.Scope, category *models.Category) error {
	if err := stampStore(scope, &category.StoreID); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Create(category).Error, "category")
}

// GetByID retrieves a category by id regardless of tenant; callers authorize
// the result against its store reference.
func (r *GORMCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, translate(err, "category")
	}
	return &category, nil
}

// List returns the categories within scope in display order.
func (r *GORMCategoryRepository) List(ctx context.Context, scope access.Scope) ([]models.Category, error) {
	q, err := scoped(r.db.WithContext(ctx), scope)
	if err != nil {
		return nil, err
	}
	var categories []models.Category
	if err := q.Order("sort_order asc, name asc").Find(&categories).Error; err != nil {
		return nil, translate(err, "category")
	}
	return categories, nil
}

// ListByStore returns one store's categories for the public menu.
func (r *GORMCategoryRepository) ListByStore(ctx context.Context, storeID string) ([]models.Category, error) {
	return r.List(ctx, access.StoreScope(storeID))
}

// NameTaken reports whether the (name, store) pair is already used.
// Names compare case-insensitively.
func (r *GORMCategoryRepository) NameTaken(ctx context.Context, storeID *string, name, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Category{}).Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))
	if storeID == nil {
		q = q.Where("store_id IS NULL")
	} else {
		q = q.Where("store_id = ?", *storeID)
	}
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, translate(err, "category")
	}
	return n > 0, nil
}

// Update writes name and order of a category inside scope.
func (r *GORMCategoryRepository) Update(ctx context.Context, scope access.Scope, category *models.Category) error {
	q, err := scoped(r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", category.ID), scope)
	if err != nil {
		return err
	}
	res := q.Updates(map[string]any{"name": category.Name, "sort_order": category.Order})
	if res.Error != nil {
		return translate(res.Error, "category")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("category")
	}
	return nil
}

// Delete removes a category inside scope. Products referencing it are left
// in place; the menu tolerates the dangling reference.
func (r *GORMCategoryRepository) Delete(ctx context.Context, scope access.Scope, id string) error {
	q, err := scoped(r.db.WithContext(ctx).Where("id = ?", id), scope)
	if err != nil {
		return err
	}
	res := q.Delete(&models.Category{})
	if res.Error != nil {
		return translate(res.Error, "category")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("category")
	}
	return nil
}
