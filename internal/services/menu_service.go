package services

import (
	"context"
	"strings"

	"qrmenu/internal/apperrors"
	"qrmenu/internal/models"
	"qrmenu/internal/repositories"
)

// UncategorizedID labels the section of products whose category is gone.
const UncategorizedID = "uncategorized"

// MenuItem is a product as shown to customers.
type MenuItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price,omitempty"`
	Image       string `json:"image,omitempty"`
}

// MenuSection is one category of a menu.
type MenuSection struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Items []MenuItem `json:"items"`
}

// PublicStore is the part of a store shown on its menu. Owner, internal ids
// and timestamps stay private.
type PublicStore struct {
	Name          string               `json:"name"`
	Slug          string               `json:"slug"`
	Phone         string               `json:"phone,omitempty"`
	Address       string               `json:"address,omitempty"`
	Description   string               `json:"description,omitempty"`
	Website       string               `json:"website,omitempty"`
	Instagram     string               `json:"instagram,omitempty"`
	Facebook      string               `json:"facebook,omitempty"`
	TikTok        string               `json:"tiktok,omitempty"`
	TelegramLinks []string             `json:"telegram_links"`
	Logo          string               `json:"logo,omitempty"`
	Banners       []string             `json:"banners"`
	Wallpaper     string               `json:"wallpaper,omitempty"`
	Settings      models.StoreSettings `json:"settings"`
}

func publicStore(s *models.Store) PublicStore {
	out := PublicStore{
		Name:          s.Name,
		Slug:          s.Slug,
		Phone:         s.Phone,
		Address:       s.Address,
		Description:   s.Description,
		Website:       s.Website,
		Instagram:     s.Instagram,
		Facebook:      s.Facebook,
		TikTok:        s.TikTok,
		TelegramLinks: s.TelegramLinks,
		Banners:       make([]string, 0, len(s.Banners)),
		Wallpaper:     s.Wallpaper,
		Settings:      s.Settings,
	}
	if out.TelegramLinks == nil {
		out.TelegramLinks = []string{}
	}
	if s.Logo != nil {
		out.Logo = s.Logo.URL
	}
	for _, b := range s.Banners {
		out.Banners = append(out.Banners, b.URL)
	}
	return out
}

// Menu is the public view of a store.
type Menu struct {
	Store    PublicStore   `json:"store"`
	Sections []MenuSection `json:"sections"`
}

// MenuService renders public menus.
type MenuService struct {
	stores     repositories.StoreRepository
	categories repositories.CategoryRepository
	products   repositories.ProductRepository
}

// NewMenuService creates a new MenuService.
func NewMenuService(stores repositories.StoreRepository, categories repositories.CategoryRepository, products repositories.ProductRepository) *MenuService {
	return &MenuService{stores: stores, categories: categories, products: products}
}

// BySlug returns the menu of an active store. Categories keep their display
// order; empty ones are skipped and products with a missing category are
// collected in a trailing uncategorized section.
func (s *MenuService) BySlug(ctx context.Context, slug string) (*Menu, error) {
	store, err := s.stores.GetBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	if !store.IsActive {
		return nil, apperrors.NotFound("store")
	}

	categories, err := s.categories.ListByStore(ctx, store.ID)
	if err != nil {
		return nil, err
	}
	products, err := s.products.ListAvailableByStore(ctx, store.ID)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string][]MenuItem, len(categories))
	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}
	var orphans []MenuItem
	for i := range products {
		item := menuItem(&products[i])
		if known[products[i].CategoryID] {
			byCategory[products[i].CategoryID] = append(byCategory[products[i].CategoryID], item)
		} else {
			orphans = append(orphans, item)
		}
	}

	menu := &Menu{Store: publicStore(store), Sections: []MenuSection{}}
	for _, c := range categories {
		if items := byCategory[c.ID]; len(items) > 0 {
			menu.Sections = append(menu.Sections, MenuSection{ID: c.ID, Name: c.Name, Items: items})
		}
	}
	if len(orphans) > 0 {
		menu.Sections = append(menu.Sections, MenuSection{ID: UncategorizedID, Name: "Other", Items: orphans})
	}
	return menu, nil
}

func menuItem(p *models.Product) MenuItem {
	return MenuItem{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.DisplayImage(),
	}
}
