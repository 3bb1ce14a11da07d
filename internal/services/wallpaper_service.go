package services

import (
	"context"
	"strings"

	"qrmenu/internal/access"
	"qrmenu/internal/apperrors"
	"qrmenu/internal/models"
	"qrmenu/internal/repositories"

	"go.uber.org/zap"
)

// WallpaperService manages the shared wallpaper library.
type WallpaperService struct {
	repo   repositories.WallpaperRepository
	assets *AssetService
	log    *zap.Logger
}

// NewWallpaperService creates a new WallpaperService.
func NewWallpaperService(repo repositories.WallpaperRepository, assets *AssetService, log *zap.Logger) *WallpaperService {
	return &WallpaperService{repo: repo, assets: assets, log: log}
}

// List returns every wallpaper.
func (s *WallpaperService) List(ctx context.Context) ([]models.Wallpaper, error) {
	return s.repo.List(ctx)
}

func quotaExceeded() error {
	return apperrors.QuotaExceeded("wallpaper_quota", "Wallpaper limit reached, delete one first")
}

// Upload stores a new wallpaper for a superadmin. The quota is checked
// before the upload and again, authoritatively, in the insert transaction;
// if that second check fails the uploaded asset is deleted.
func (s *WallpaperService) Upload(ctx context.Context, p access.Principal, name string, file *File) (*models.Wallpaper, error) {
	if !p.IsSuperadmin() {
		return nil, apperrors.Forbidden("role_not_allowed")
	}

	n, err := s.repo.CountByUploader(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if n >= models.MaxWallpapersPerUploader {
		return nil, quotaExceeded()
	}

	w := &models.Wallpaper{Name: strings.TrimSpace(name), UploadedBy: p.UserID}
	if err := models.Validate(w); err != nil {
		return nil, err
	}

	obj, err := s.assets.Upload(ctx, AssetWallpaper, file)
	if err != nil {
		return nil, err
	}
	w.URL, w.AssetID = obj.URL, obj.ID

	if err := s.repo.CreateWithinQuota(ctx, w, models.MaxWallpapersPerUploader); err != nil {
		s.assets.Discard(ctx, obj.ID, "quota")
		return nil, err
	}
	s.log.Info("Wallpaper uploaded", zap.String("wallpaper_id", w.ID), zap.String("user_id", p.UserID))
	return w, nil
}

// Delete removes a wallpaper owned by p. The stored asset is purged first;
// if that fails the record is kept and the error returned.
func (s *WallpaperService) Delete(ctx context.Context, p access.Principal, id string) error {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if w.UploadedBy != p.UserID {
		return apperrors.Forbidden("not_uploader")
	}
	if err := s.assets.Remove(ctx, w.AssetID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, p.UserID); err != nil {
		return err
	}
	s.log.Info("Wallpaper deleted", zap.String("wallpaper_id", id), zap.String("user_id", p.UserID))
	return nil
}
