package repositories

import (
	"context"

	"qrmenu/internal/access"
	"qrmenu/internal/apperrors"
	"qrmenu/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{db: db}
}

// Create inserts a product bound to the scope's store.
func (r *GORMProductRepository) Create(ctx context.Context, scope access.Scope, product *models.Product) error {
	if err := stampStore(scope, &product.StoreID); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Create(product).Error, "product")
}

// GetByID retrieves a single product by its ID regardless of tenant.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, translate(err, "product")
	}
	return &product, nil
}

// List retrieves the products within scope in display order.
func (r *GORMProductRepository) List(ctx context.Context, scope access.Scope, filter ProductFilter) ([]models.Product, error) {
	q, err := scoped(r.db.WithContext(ctx), scope)
	if err != nil {
		return nil, err
	}
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	var products []models.Product
	if err := q.Order("sort_order asc, created_at asc").Find(&products).Error; err != nil {
		return nil, translate(err, "product")
	}
	return products, nil
}

// ListAvailableByStore returns the products shown on a public menu.
func (r *GORMProductRepository) ListAvailableByStore(ctx context.Context, storeID string) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND is_available = ?", storeID, true).
		Order("sort_order asc, created_at asc").
		Find(&products).Error
	if err != nil {
		return nil, translate(err, "product")
	}
	return products, nil
}

// Update writes every mutable field of product inside scope, including
// zero values. Store reference and creation time are never rewritten.
func (r *GORMProductRepository) Update(ctx context.Context, scope access.Scope, product *models.Product) error {
	q, err := scoped(r.db.WithContext(ctx).Model(product), scope)
	if err != nil {
		return err
	}
	res := q.Select("*").Omit("id", "store_id", "created_at").Updates(product)
	if res.Error != nil {
		return translate(res.Error, "product")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("product")
	}
	return nil
}

// Delete deletes a product inside scope.
func (r *GORMProductRepository) Delete(ctx context.Context, scope access.Scope, id string) error {
	q, err := scoped(r.db.WithContext(ctx).Where("id = ?", id), scope)
	if err != nil {
		return err
	}
	res := q.Delete(&models.Product{})
	if res.Error != nil {
		return translate(res.Error, "product")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("product")
	}
	return nil
}
