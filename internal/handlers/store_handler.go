package handlers

import (
	"qrmenu/internal/middleware"
	"qrmenu/internal/services"

	"github.com/gofiber/fiber/v2"
)

// StoreHandler serves the store profile and its images.
type StoreHandler struct {
	service *services.StoreService
}

// NewStoreHandler creates a new StoreHandler.
func NewStoreHandler(service *services.StoreService) *StoreHandler {
	return &StoreHandler{service: service}
}

// RegisterRoutes registers the store routes. chain must resolve the tenant.
func (h *StoreHandler) RegisterRoutes(router fiber.Router, chain ...fiber.Handler) {
	storeRoutes := router.Group("/stores", chain...)
	storeRoutes.Get("/", h.HandleList)
	storeRoutes.Get("/me", h.HandleMine)

	one := storeRoutes.Group("/:storeId", middleware.EnforceStoreParam("storeId"))
	one.Get("/", h.HandleGet)
	one.Put("/", h.HandleUpdate)
	one.Put("/slug", h.HandleChangeSlug)
	one.Post("/logo", h.HandleReplaceLogo)
	one.Delete("/logo", h.HandleRemoveLogo)
	one.Post("/banners", h.HandleAddBanner)
	one.Delete("/banners/:index", h.HandleRemoveBanner)
	one.Put("/wallpaper", h.HandleSetWallpaper)
}

// HandleList returns every store the caller can see.
func (h *StoreHandler) HandleList(c *fiber.Ctx) error {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	stores, err := h.service.List(c.UserContext(), p)
	if err != nil {
		return err
	}
	return c.JSON(stores)
}

// HandleMine returns the caller's own store and marks the session active.
func (h *StoreHandler) HandleMine(c *fiber.Ctx) error {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	store, err := h.service.Mine(c.UserContext(), p)
	if err != nil {
		return err
	}
	h.service.TouchActive(c.UserContext(), p)
	return c.JSON(store)
}

// HandleGet returns a single store.
func (h *StoreHandler) HandleGet(c *fiber.Ctx) error {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	store, err := h.service.Get(c.UserContext(), p, c.Params("storeId"))
	if err != nil {
		return err
	}
	return c.JSON(store)
}

// HandleUpdate replaces the editable profile of a store.
func (h *StoreHandler) HandleUpdate(c *fiber.Ctx) error {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	var in services.StoreProfileInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(err)
	}
	store, err := h.service.UpdateProfile(c.UserContext(), p, c.Params("storeId"), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Store updated", "store": store})
}

type slugRequest struct {
	Slug string `json:"slug"`
}

// HandleChangeSlug changes the public slug of a store.
func (h *StoreHandler) HandleChangeSlug(c *fiber.Ctx) error {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	var req slugRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}
	store, err := h.service.ChangeSlug(c.UserContext(), p, c.Params("storeId"), req.Slug)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Slug updated", "store": store})
}

// HandleReplaceLogo uploads the multipart "file" as the store logo.
func (h *StoreHandler) HandleReplaceLogo(c *fiber.Ctx) error {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	file, err := requireFile(c, "file")
	if err != nil {
		return err
	}
	store, err := h.service.ReplaceLogo(c.UserContext(), p, c.Params("storeId"), file)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Logo updated", "store": store})
}

// HandleRemoveLogo clears the store logo.
func (h *StoreHandler) HandleRemoveLogo(c *fiber.Ctx) error {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	store, err := h.service.RemoveLogo(c.UserContext(), p, c.Params("storeId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Logo removed", "store": store})
}

// HandleAddBanner appends the multipart "file" to the banner list.
func (h *StoreHandler) HandleAddBanner(c *fiber.Ctx) error {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	file, err := requireFile(c, "file")
	if err != nil {
		return err
	}
	store, err := h.service.AddBanner(c.UserContext(), p, c.Params("storeId"), file)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Banner added", "store": store})
}

// HandleRemoveBanner removes the banner at the given position.
func (h *StoreHandler) HandleRemoveBanner(c *fiber.Ctx) error {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	index, err := intParam(c, "index")
	if err != nil {
		return err
	}
	store, err := h.service.RemoveBanner(c.UserContext(), p, c.Params("storeId"), index)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Banner removed", "store": store})
}

type wallpaperRequest struct {
	WallpaperID string `json:"wallpaper_id"`
}

// HandleSetWallpaper selects a catalog wallpaper; an empty id clears it.
func (h *StoreHandler) HandleSetWallpaper(c *fiber.Ctx) error {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	var req wallpaperRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}
	store, err := h.service.SetWallpaper(c.UserContext(), p, c.Params("storeId"), req.WallpaperID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Wallpaper updated", "store": store})
}
