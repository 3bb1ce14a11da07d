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

// CategoryInput is the writable part of a category. StoreID is honored only
// for a superadmin; nil creates a global category.
type CategoryInput struct {
	Name    string  `json:"name"`
	Order   int     `json:"order"`
	StoreID *string `json:"store_id,omitempty"`
}

// CategoryService handles business logic related to categories.
type CategoryService struct {
	repo   repositories.CategoryRepository
	stores repositories.StoreRepository
	log    *zap.Logger
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo repositories.CategoryRepository, stores repositories.StoreRepository, log *zap.Logger) *CategoryService {
	return &CategoryService{repo: repo, stores: stores, log: log}
}

// List returns the categories visible to p.
func (s *CategoryService) List(ctx context.Context, p access.Principal) ([]models.Category, error) {
	return s.repo.List(ctx, p.Scope)
}

// Get loads one category and checks that p may access it.
func (s *CategoryService) Get(ctx context.Context, p access.Principal, id string) (*models.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.AuthorizeResource(category.StoreID); err != nil {
		return nil, err
	}
	return category, nil
}

// Create adds a category to p's store, or for a superadmin to the store
// named in the input (global when none).
func (s *CategoryService) Create(ctx context.Context, p access.Principal, in CategoryInput) (*models.Category, error) {
	category := &models.Category{Name: strings.TrimSpace(in.Name), Order: in.Order}
	if p.Scope.IsUnrestricted() && in.StoreID != nil && *in.StoreID != "" {
		if _, err := s.stores.GetByID(ctx, *in.StoreID); err != nil {
			return nil, err
		}
		category.StoreID = in.StoreID
	} else if storeID, ok := p.Scope.StoreID(); ok {
		category.StoreID = &storeID
	}

	if err := models.Validate(category); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, category.StoreID, category.Name, ""); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p.Scope, category); err != nil {
		return nil, err
	}
	s.log.Info("Category created", zap.String("category_id", category.ID), zap.String("user_id", p.UserID))
	return category, nil
}

// Update renames or reorders a category.
func (s *CategoryService) Update(ctx context.Context, p access.Principal, id string, in CategoryInput) (*models.Category, error) {
	category, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	category.Name = strings.TrimSpace(in.Name)
	category.Order = in.Order

	if err := models.Validate(category); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, category.StoreID, category.Name, category.ID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p.Scope, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a category. Its products keep their dangling reference.
func (s *CategoryService) Delete(ctx context.Context, p access.Principal, id string) error {
	if _, err := s.Get(ctx, p, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, p.Scope, id); err != nil {
		return err
	}
	s.log.Info("Category deleted", zap.String("category_id", id), zap.String("user_id", p.UserID))
	return nil
}

func (s *CategoryService) ensureUniqueName(ctx context.Context, storeID *string, name, excludeID string) error {
	taken, err := s.repo.NameTaken(ctx, storeID, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.Conflict("category_exists", "A category with this name already exists")
	}
	return nil
}
