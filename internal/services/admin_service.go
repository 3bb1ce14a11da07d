package services

import (
	"context"
	"strings"
	"time"

	"qrmenu/internal/access"
	"qrmenu/internal/apperrors"
	"qrmenu/internal/models"
	"qrmenu/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegisterAdminInput provisions an admin together with an empty store.
// Slug defaults to one derived from StoreName.
type RegisterAdminInput struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Name      string `json:"name" validate:"omitempty,max=100"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	StoreName string `json:"store_name" validate:"required,min=2,max=100"`
	Slug      string `json:"slug"`
}

// UpdateAdminInput is the editable profile of an admin.
type UpdateAdminInput struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Name  string `json:"name" validate:"omitempty,max=100"`
}

// BootstrapInput creates the superadmin.
type BootstrapInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Name     string `json:"name" validate:"omitempty,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// AdminSummary is an admin account with its store.
type AdminSummary struct {
	models.User
	Store *models.Store `json:"store,omitempty"`
}

// AdminService is the superadmin's account management.
type AdminService struct {
	users    repositories.UserRepository
	stores   repositories.StoreRepository
	accounts repositories.AccountRepository
	assets   *AssetService
	log      *zap.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(users repositories.UserRepository, stores repositories.StoreRepository, accounts repositories.AccountRepository, assets *AssetService, log *zap.Logger) *AdminService {
	return &AdminService{
		users:    users,
		stores:   stores,
		accounts: accounts,
		assets:   assets,
		log:      log,
	}
}

// List returns every admin with the store it owns.
func (s *AdminService) List(ctx context.Context) ([]AdminSummary, error) {
	admins, err := s.users.ListByRole(ctx, access.RoleAdmin)
	if err != nil {
		return nil, err
	}
	stores, err := s.stores.List(ctx, access.Unrestricted())
	if err != nil {
		return nil, err
	}
	byAdmin := make(map[string]*models.Store, len(stores))
	for i := range stores {
		byAdmin[stores[i].AdminID] = &stores[i]
	}

	out := make([]AdminSummary, 0, len(admins))
	for _, u := range admins {
		out = append(out, AdminSummary{User: u, Store: byAdmin[u.ID]})
	}
	return out, nil
}

// Register creates an admin and its store in one transaction.
func (s *AdminService) Register(ctx context.Context, in RegisterAdminInput) (*AdminSummary, error) {
	in.Email = repositories.NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.StoreName = strings.TrimSpace(in.StoreName)
	if err := models.Validate(in); err != nil {
		return nil, err
	}

	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	if slug == "" {
		slug = models.Slugify(in.StoreName)
	}
	store := &models.Store{
		Name:     in.StoreName,
		Slug:     slug,
		PublicID: uuid.NewString(),
		IsActive: true,
		Settings: models.DefaultStoreSettings(),
	}
	store.Normalize()
	if err := models.Validate(store); err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(ctx, in.Email, ""); err != nil {
		return nil, err
	}
	taken, err := s.stores.SlugTaken(ctx, store.Slug, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.Conflict("slug_taken", "This slug is already in use")
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:    in.Email,
		Name:     in.Name,
		Password: hashed,
		Role:     access.RoleAdmin,
	}
	if err := s.accounts.CreateAdminWithStore(ctx, user, store); err != nil {
		return nil, err
	}
	user.Password = ""
	s.log.Info("Admin registered", zap.String("user_id", user.ID), zap.String("store_id", store.ID))
	return &AdminSummary{User: *user, Store: store}, nil
}

func (s *AdminService) ensureEmailFree(ctx context.Context, email, excludeID string) error {
	taken, err := s.users.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.Conflict("email_taken", "This email is already registered")
	}
	return nil
}

// admin loads id and checks it is an admin account.
func (s *AdminService) admin(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != access.RoleAdmin {
		return nil, apperrors.NotFound("admin")
	}
	return user, nil
}

// Update edits the name and email of an admin.
func (s *AdminService) Update(ctx context.Context, id string, in UpdateAdminInput) (*models.User, error) {
	in.Email = repositories.NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	user, err := s.admin(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, in.Email, id); err != nil {
		return nil, err
	}
	if err := s.users.UpdateProfile(ctx, id, in.Name, in.Email); err != nil {
		return nil, err
	}
	user.Name, user.Email = in.Name, in.Email
	return user, nil
}

// Unlock clears the lockout state of an admin.
func (s *AdminService) Unlock(ctx context.Context, id string) error {
	if _, err := s.admin(ctx, id); err != nil {
		return err
	}
	if err := s.users.ResetLoginAttempts(ctx, id); err != nil {
		return err
	}
	s.log.Info("Admin unlocked", zap.String("user_id", id))
	return nil
}

// Delete removes an admin with its store, categories and products in one
// transaction, then purges the store's assets best effort.
func (s *AdminService) Delete(ctx context.Context, p access.Principal, id string) error {
	if id == p.UserID {
		return apperrors.Forbidden("self_delete")
	}
	if _, err := s.admin(ctx, id); err != nil {
		return err
	}

	var storeID string
	var assetIDs []string
	store, err := s.stores.GetByAdminID(ctx, id)
	switch {
	case err == nil:
		storeID = store.ID
		if assetIDs, err = s.accounts.StoreAssetIDs(ctx, storeID); err != nil {
			return err
		}
	case apperrors.KindOf(err) != apperrors.KindNotFound:
		return err
	}

	if err := s.accounts.DeleteAdminCascade(ctx, id, storeID); err != nil {
		return err
	}
	for _, assetID := range assetIDs {
		s.assets.Discard(ctx, assetID, "cascade")
	}
	s.log.Info("Admin deleted",
		zap.String("user_id", id),
		zap.String("store_id", storeID),
		zap.String("deleted_by", p.UserID),
		zap.Int("assets", len(assetIDs)))
	return nil
}

// BootstrapSuperadmin creates the one superadmin. It fails with Conflict
// when a superadmin already exists.
func (s *AdminService) BootstrapSuperadmin(ctx context.Context, in BootstrapInput) (*models.User, error) {
	in.Email = repositories.NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	n, err := s.users.CountByRole(ctx, access.RoleSuperadmin)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, apperrors.Conflict("superadmin_exists", "A superadmin already exists")
	}
	if err := s.ensureEmailFree(ctx, in.Email, ""); err != nil {
		return nil, err
	}
	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &models.User{
		Email:             in.Email,
		Name:              in.Name,
		Password:          hashed,
		Role:              access.RoleSuperadmin,
		PasswordChangedAt: &now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	user.Password = ""
	s.log.Info("Superadmin created", zap.String("user_id", user.ID))
	return user, nil
}
