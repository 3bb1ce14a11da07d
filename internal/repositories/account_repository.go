package repositories

import (
	"context"

	"qrmenu/internal/models"

	"gorm.io/gorm"
)

// AccountRepository performs the multi-table writes of admin provisioning
// and removal.
type AccountRepository interface {
	// CreateAdminWithStore inserts an admin and its empty store atomically.
	CreateAdminWithStore(ctx context.Context, user *models.User, store *models.Store) error
	// StoreAssetIDs lists every stored asset id belonging to a store.
	StoreAssetIDs(ctx context.Context, storeID string) ([]string, error)
	// DeleteAdminCascade removes, in order, the store's products, its
	// categories, the store and finally the user, in one transaction.
	DeleteAdminCascade(ctx context.Context, userID, storeID string) error
}

// GORMAccountRepository is a GORM implementation of AccountRepository.
type GORMAccountRepository struct {
	db *gorm.DB
}

// NewGORMAccountRepository creates a new instance of GORMAccountRepository.
func NewGORMAccountRepository(db *gorm.DB) *GORMAccountRepository {
	return &GORMAccountRepository{db: db}
}

// CreateAdminWithStore inserts user then store; either both exist or neither.
func (r *GORMAccountRepository) CreateAdminWithStore(ctx context.Context, user *models.User, store *models.Store) error {
	user.Email = NormalizeEmail(user.Email)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		store.AdminID = user.ID
		return tx.Create(store).Error
	})
	return translate(err, "account")
}

// StoreAssetIDs collects product image ids plus the store's logo and banners.
func (r *GORMAccountRepository) StoreAssetIDs(ctx context.Context, storeID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("store_id = ? AND image_id <> ''", storeID).
		Pluck("image_id", &ids).Error
	if err != nil {
		return nil, translate(err, "product")
	}

	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", storeID).Error; err != nil {
		return nil, translate(err, "store")
	}
	if store.Logo != nil && store.Logo.ID != "" {
		ids = append(ids, store.Logo.ID)
	}
	for _, b := range store.Banners {
		if b.ID != "" {
			ids = append(ids, b.ID)
		}
	}
	return ids, nil
}

// DeleteAdminCascade deletes products, categories, store, then user.
func (r *GORMAccountRepository) DeleteAdminCascade(ctx context.Context, userID, storeID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if storeID != "" {
			if err := tx.Where("store_id = ?", storeID).Delete(&models.Product{}).Error; err != nil {
				return err
			}
			if err := tx.Where("store_id = ?", storeID).Delete(&models.Category{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id = ?", storeID).Delete(&models.Store{}).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", userID).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err, "user")
}
