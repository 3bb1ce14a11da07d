package handlers

import (
	"qrmenu/internal/access"
	"qrmenu/internal/middleware"
	"qrmenu/internal/services"

	"github.com/gofiber/fiber/v2"
)

// WallpaperHandler serves the shared wallpaper catalog.
type WallpaperHandler struct {
	service *services.WallpaperService
}

// NewWallpaperHandler creates a new WallpaperHandler.
func NewWallpaperHandler(service *services.WallpaperService) *WallpaperHandler {
	return &WallpaperHandler{service: service}
}

// RegisterRoutes registers the wallpaper routes. Any signed-in account may
// browse the catalog; only a superadmin may change it.
func (h *WallpaperHandler) RegisterRoutes(router fiber.Router, chain ...fiber.Handler) {
	wallpaperRoutes := router.Group("/wallpapers", chain...)
	wallpaperRoutes.Get("/", h.HandleList)

	superadminOnly := middleware.RequireRoles(access.RoleSuperadmin)
	wallpaperRoutes.Post("/", superadminOnly, h.HandleUpload)
	wallpaperRoutes.Delete("/:id", superadminOnly, h.HandleDelete)
}

// HandleList returns the catalog.
func (h *WallpaperHandler) HandleList(c *fiber.Ctx) error {
	wallpapers, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(wallpapers)
}

// HandleUpload stores the multipart "file" under the form value "name".
func (h *WallpaperHandler) HandleUpload(c *fiber.Ctx) error {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	file, err := requireFile(c, "file")
	if err != nil {
		return err
	}
	w, err := h.service.Upload(c.UserContext(), p, c.FormValue("name"), file)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Wallpaper uploaded",
		"wallpaper": w,
	})
}

// HandleDelete removes a wallpaper the caller uploaded.
func (h *WallpaperHandler) HandleDelete(c *fiber.Ctx) error {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), p, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
