package repositories

import (
	"context"

	"qrmenu/internal/apperrors"
	"qrmenu/internal/models"

	"gorm.io/gorm"
)

// WallpaperRepository defines data access for shared wallpapers.
type WallpaperRepository interface {
	List(ctx context.Context) ([]models.Wallpaper, error)
	GetByID(ctx context.Context, id string) (*models.Wallpaper, error)
	CountByUploader(ctx context.Context, uploaderID string) (int64, error)
	// CreateWithinQuota re-counts the uploader's wallpapers and inserts w in
	// one transaction, failing with QuotaExceeded when limit is reached.
	CreateWithinQuota(ctx context.Context, w *models.Wallpaper, limit int) error
	Delete(ctx context.Context, id, uploaderID string) error
}

// GORMWallpaperRepository is a GORM implementation of WallpaperRepository.
type GORMWallpaperRepository struct {
	db *gorm.DB
}

// NewGORMWallpaperRepository creates a new instance of GORMWallpaperRepository.
func NewGORMWallpaperRepository(db *gorm.DB) *GORMWallpaperRepository {
	return &GORMWallpaperRepository{db: db}
}

// List returns every wallpaper, newest first.
func (r *GORMWallpaperRepository) List(ctx context.Context) ([]models.Wallpaper, error) {
	var wallpapers []models.Wallpaper
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&wallpapers).Error; err != nil {
		return nil, translate(err, "wallpaper")
	}
	return wallpapers, nil
}

// GetByID retrieves a wallpaper by id.
func (r *GORMWallpaperRepository) GetByID(ctx context.Context, id string) (*models.Wallpaper, error) {
	var w models.Wallpaper
	if err := r.db.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		return nil, translate(err, "wallpaper")
	}
	return &w, nil
}

// CountByUploader counts wallpapers owned by one uploader.
func (r *GORMWallpaperRepository) CountByUploader(ctx context.Context, uploaderID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Wallpaper{}).Where("uploaded_by = ?", uploaderID).Count(&n).Error
	return n, translate(err, "wallpaper")
}

// CreateWithinQuota inserts w unless the uploader already owns limit wallpapers.
func (r *GORMWallpaperRepository) CreateWithinQuota(ctx context.Context, w *models.Wallpaper, limit int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Wallpaper{}).Where("uploaded_by = ?", w.UploadedBy).Count(&n).Error; err != nil {
			return err
		}
		if n >= int64(limit) {
			return apperrors.QuotaExceeded("wallpaper_quota", "Wallpaper limit reached")
		}
		return tx.Create(w).Error
	})
	return translate(err, "wallpaper")
}

// Delete removes a wallpaper owned by uploaderID.
func (r *GORMWallpaperRepository) Delete(ctx context.Context, id, uploaderID string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND uploaded_by = ?", id, uploaderID).Delete(&models.Wallpaper{})
	if res.Error != nil {
		return translate(res.Error, "wallpaper")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("wallpaper")
	}
	return nil
}
