package handlers

import (
	"qrmenu/internal/services"

	"github.com/gofiber/fiber/v2"
)

// MenuHandler serves the public menu. It needs no session.
type MenuHandler struct {
	service *services.MenuService
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(service *services.MenuService) *MenuHandler {
	return &MenuHandler{service: service}
}

// RegisterRoutes registers the public menu route.
func (h *MenuHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/menu/:slug", h.HandleMenu)
}

// HandleMenu returns the menu of an active store.
func (h *MenuHandler) HandleMenu(c *fiber.Ctx) error {
	menu, err := h.service.BySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(menu)
}
