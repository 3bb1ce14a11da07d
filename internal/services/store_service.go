package services

import (
	"context"
	"strings"
	"time"

	"qrmenu/internal/access"
	"qrmenu/internal/apperrors"
	"qrmenu/internal/models"
	"qrmenu/internal/repositories"
	"qrmenu/pkg/storage"

	"go.uber.org/zap"
)

// StoreProfileInput holds the profile fields an owner may edit.
// IsActive is applied only for a superadmin.
type StoreProfileInput struct {
	Name          string               `json:"name"`
	Phone         string               `json:"phone"`
	Address       string               `json:"address"`
	Description   string               `json:"description"`
	Website       string               `json:"website"`
	Instagram     string               `json:"instagram"`
	Facebook      string               `json:"facebook"`
	TikTok        string               `json:"tiktok"`
	TelegramLinks []string             `json:"telegram_links"`
	Settings      models.StoreSettings `json:"settings"`
	IsActive      *bool                `json:"is_active,omitempty"`
}

type slugInput struct {
	Slug string `json:"slug" validate:"required,min=2,max=60,slug"`
}

// StoreService manages store profiles and their images.
type StoreService struct {
	repo       repositories.StoreRepository
	wallpapers repositories.WallpaperRepository
	assets     *AssetService
	log        *zap.Logger
}

// NewStoreService creates a new StoreService.
func NewStoreService(repo repositories.StoreRepository, wallpapers repositories.WallpaperRepository, assets *AssetService, log *zap.Logger) *StoreService {
	return &StoreService{repo: repo, wallpapers: wallpapers, assets: assets, log: log}
}

// List returns the stores visible to p.
func (s *StoreService) List(ctx context.Context, p access.Principal) ([]models.Store, error) {
	return s.repo.List(ctx, p.Scope)
}

// Get loads store id after checking that p may access it.
func (s *StoreService) Get(ctx context.Context, p access.Principal, id string) (*models.Store, error) {
	if err := p.AuthorizeStore(id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Mine returns the caller's own store. A superadmin owns none.
func (s *StoreService) Mine(ctx context.Context, p access.Principal) (*models.Store, error) {
	storeID, ok := p.Scope.StoreID()
	if !ok {
		return nil, apperrors.NotFound("store")
	}
	return s.repo.GetByID(ctx, storeID)
}

// UpdateProfile normalizes, validates and saves the profile of store id.
func (s *StoreService) UpdateProfile(ctx context.Context, p access.Principal, id string, in StoreProfileInput) (*models.Store, error) {
	store, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}

	store.Name = in.Name
	store.Phone = strings.TrimSpace(in.Phone)
	store.Address = strings.TrimSpace(in.Address)
	store.Description = strings.TrimSpace(in.Description)
	store.Website = in.Website
	store.Instagram = in.Instagram
	store.Facebook = in.Facebook
	store.TikTok = in.TikTok
	store.TelegramLinks = in.TelegramLinks
	store.Settings = in.Settings
	if store.Settings == (models.StoreSettings{}) {
		store.Settings = models.DefaultStoreSettings()
	}
	if in.IsActive != nil && p.IsSuperadmin() {
		store.IsActive = *in.IsActive
	}

	if err := s.save(ctx, p, store); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *StoreService) save(ctx context.Context, p access.Principal, store *models.Store) error {
	store.Normalize()
	if err := models.Validate(store); err != nil {
		return err
	}
	return s.repo.Update(ctx, p.Scope, store)
}

// ChangeSlug renames the public address of a store. Superadmin only.
func (s *StoreService) ChangeSlug(ctx context.Context, p access.Principal, id, slug string) (*models.Store, error) {
	if !p.IsSuperadmin() {
		return nil, apperrors.Forbidden("role_not_allowed")
	}
	in := slugInput{Slug: strings.ToLower(strings.TrimSpace(slug))}
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	store, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	taken, err := s.repo.SlugTaken(ctx, in.Slug, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.Conflict("slug_taken", "This slug is already in use")
	}
	if err := s.repo.UpdateSlug(ctx, id, in.Slug); err != nil {
		return nil, err
	}
	s.log.Info("Store slug changed", zap.String("store_id", id), zap.String("from", store.Slug), zap.String("to", in.Slug))
	store.Slug = in.Slug
	return store, nil
}

// ReplaceLogo uploads a new logo and removes the previous one afterwards.
func (s *StoreService) ReplaceLogo(ctx context.Context, p access.Principal, id string, file *File) (*models.Store, error) {
	store, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	oldID := ""
	if store.Logo != nil {
		oldID = store.Logo.ID
	}
	_, err = s.assets.Replace(ctx, AssetLogo, oldID, file, func(obj *storage.Object) error {
		store.Logo = &models.Asset{URL: obj.URL, ID: obj.ID}
		return s.save(ctx, p, store)
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// RemoveLogo clears the logo. A store without a logo is left unchanged.
func (s *StoreService) RemoveLogo(ctx context.Context, p access.Principal, id string) (*models.Store, error) {
	store, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if store.Logo == nil {
		return store, nil
	}
	oldID := store.Logo.ID
	store.Logo = nil
	if err := s.save(ctx, p, store); err != nil {
		return nil, err
	}
	s.assets.Discard(ctx, oldID, "remove")
	return store, nil
}

// AddBanner appends an uploaded banner while fewer than MaxBanners exist.
func (s *StoreService) AddBanner(ctx context.Context, p access.Principal, id string, file *File) (*models.Store, error) {
	store, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if len(store.Banners) >= models.MaxBanners {
		return nil, apperrors.Validation("banners", "max")
	}
	_, err = s.assets.Replace(ctx, AssetBanner, "", file, func(obj *storage.Object) error {
		store.Banners = append(store.Banners, models.Asset{URL: obj.URL, ID: obj.ID})
		return s.save(ctx, p, store)
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// RemoveBanner drops the banner at index and deletes its asset.
func (s *StoreService) RemoveBanner(ctx context.Context, p access.Principal, id string, index int) (*models.Store, error) {
	store, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(store.Banners) {
		return nil, apperrors.NotFound("banner")
	}
	removed := store.Banners[index]
	store.Banners = append(store.Banners[:index:index], store.Banners[index+1:]...)
	if err := s.save(ctx, p, store); err != nil {
		return nil, err
	}
	s.assets.Discard(ctx, removed.ID, "remove")
	return store, nil
}

// SetWallpaper points the store at a shared wallpaper; an empty id clears it.
func (s *StoreService) SetWallpaper(ctx context.Context, p access.Principal, id, wallpaperID string) (*models.Store, error) {
	store, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	store.Wallpaper = ""
	if wallpaperID != "" {
		w, err := s.wallpapers.GetByID(ctx, wallpaperID)
		if err != nil {
			return nil, err
		}
		store.Wallpaper = w.URL
	}
	if err := s.save(ctx, p, store); err != nil {
		return nil, err
	}
	return store, nil
}

// TouchActive stamps the store of an admin as recently active. Errors are
// logged only.
func (s *StoreService) TouchActive(ctx context.Context, p access.Principal) {
	storeID, ok := p.Scope.StoreID()
	if !ok {
		return
	}
	if err := s.repo.TouchLastActive(ctx, storeID, time.Now()); err != nil {
		s.log.Warn("Failed to record store activity", zap.String("store_id", storeID), zap.Error(err))
	}
}
