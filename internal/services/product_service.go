package services

import (
	"context"
	"strings"

	"qrmenu/internal/access"
	"qrmenu/internal/apperrors"
	"qrmenu/internal/models"
	"qrmenu/internal/repositories"
	"qrmenu/pkg/storage"

	"go.uber.org/zap"
)

// ProductInput is the writable part of a product plus its image action.
// Image takes precedence over RemoveImage.
type ProductInput struct {
	Title       string
	Description string
	Price       string
	ImageURL    string
	IsAvailable bool
	Order       int
	CategoryID  string
	RemoveImage bool
	Image       *File
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo       repositories.ProductRepository
	categories repositories.CategoryRepository
	assets     *AssetService
	log        *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, categories repositories.CategoryRepository, assets *AssetService, log *zap.Logger) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
		assets:     assets,
		log:        log,
	}
}

// List retrieves the products visible to p.
func (s *ProductService) List(ctx context.Context, p access.Principal, filter repositories.ProductFilter) ([]models.Product, error) {
	return s.repo.List(ctx, p.Scope, filter)
}

// Get retrieves a single product and checks that p may access it.
func (s *ProductService) Get(ctx context.Context, p access.Principal, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.AuthorizeResource(product.StoreID); err != nil {
		return nil, err
	}
	return product, nil
}

// category loads the product's category and checks it is usable by p.
func (s *ProductService) category(ctx context.Context, p access.Principal, id string) (*models.Category, error) {
	if id == "" {
		return nil, apperrors.Validation("category_id", "required")
	}
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.Validation("category_id", "exists")
		}
		return nil, err
	}
	if err := p.AuthorizeResource(category.StoreID); err != nil {
		return nil, err
	}
	return category, nil
}

func (in ProductInput) apply(product *models.Product) {
	product.Title = strings.TrimSpace(in.Title)
	product.Description = strings.TrimSpace(in.Description)
	product.Price = strings.TrimSpace(in.Price)
	product.ImageURL = strings.TrimSpace(in.ImageURL)
	product.IsAvailable = in.IsAvailable
	product.Order = in.Order
	product.CategoryID = in.CategoryID
}

// Create adds a product to the store of its category. The image, if any, is
// uploaded first and discarded again when the insert fails.
func (s *ProductService) Create(ctx context.Context, p access.Principal, in ProductInput) (*models.Product, error) {
	category, err := s.category(ctx, p, in.CategoryID)
	if err != nil {
		return nil, err
	}

	product := &models.Product{StoreID: category.StoreID}
	in.apply(product)
	if err := models.Validate(product); err != nil {
		return nil, err
	}

	if in.Image == nil {
		if err := s.repo.Create(ctx, p.Scope, product); err != nil {
			return nil, err
		}
		return product, nil
	}

	_, err = s.assets.Replace(ctx, AssetProduct, "", in.Image, func(obj *storage.Object) error {
		product.Image, product.ImageID = obj.URL, obj.ID
		return s.repo.Create(ctx, p.Scope, product)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Product created", zap.String("product_id", product.ID), zap.String("user_id", p.UserID))
	return product, nil
}

// Update edits a product. A new image replaces the old one only after the
// record points at it. RemoveImage clears the uploaded image; so does
// switching to a different external image URL.
func (s *ProductService) Update(ctx context.Context, p access.Principal, id string, in ProductInput) (*models.Product, error) {
	product, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if in.CategoryID != product.CategoryID {
		category, err := s.category(ctx, p, in.CategoryID)
		if err != nil {
			return nil, err
		}
		if !sameStore(category.StoreID, product.StoreID) {
			return nil, apperrors.Validation("category_id", "same_store")
		}
	}

	oldImageURL := product.ImageURL
	in.apply(product)
	if err := models.Validate(product); err != nil {
		return nil, err
	}

	if in.Image != nil {
		_, err := s.assets.Replace(ctx, AssetProduct, product.ImageID, in.Image, func(obj *storage.Object) error {
			product.Image, product.ImageID = obj.URL, obj.ID
			return s.repo.Update(ctx, p.Scope, product)
		})
		if err != nil {
			return nil, err
		}
		return product, nil
	}

	staleID := ""
	if in.RemoveImage || (product.ImageURL != "" && product.ImageURL != oldImageURL) {
		staleID = product.ImageID
		product.Image, product.ImageID = "", ""
	}
	if err := s.repo.Update(ctx, p.Scope, product); err != nil {
		return nil, err
	}
	if staleID != "" {
		s.assets.Discard(ctx, staleID, "remove")
	}
	return product, nil
}

// Delete deletes a product and then its uploaded image.
func (s *ProductService) Delete(ctx context.Context, p access.Principal, id string) error {
	product, err := s.Get(ctx, p, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, p.Scope, id); err != nil {
		return err
	}
	s.assets.Discard(ctx, product.ImageID, "delete")
	s.log.Info("Product deleted", zap.String("product_id", id), zap.String("user_id", p.UserID))
	return nil
}

func sameStore(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
