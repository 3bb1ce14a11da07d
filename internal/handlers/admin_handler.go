package handlers

import (
	"time"

	"qrmenu/internal/access"
	"qrmenu/internal/middleware"
	"qrmenu/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler lets a superadmin manage admin accounts.
type AdminHandler struct {
	service      *services.AdminService
	auth         *services.AuthService
	reauthMaxAge time.Duration
}

// NewAdminHandler creates a new AdminHandler. Deleting an admin requires a
// token younger than reauthMaxAge plus the caller's password.
func NewAdminHandler(service *services.AdminService, auth *services.AuthService, reauthMaxAge time.Duration) *AdminHandler {
	return &AdminHandler{service: service, auth: auth, reauthMaxAge: reauthMaxAge}
}

// RegisterRoutes registers the admin management routes.
func (h *AdminHandler) RegisterRoutes(router fiber.Router, chain ...fiber.Handler) {
	guards := make([]fiber.Handler, 0, len(chain)+1)
	guards = append(guards, chain...)
	guards = append(guards, middleware.RequireRoles(access.RoleSuperadmin))
	adminRoutes := router.Group("/admins", guards...)
	adminRoutes.Get("/", h.HandleList)
	adminRoutes.Post("/", h.HandleRegister)
	adminRoutes.Put("/:id", h.HandleUpdate)
	adminRoutes.Post("/:id/unlock", h.HandleUnlock)
	adminRoutes.Delete("/:id",
		middleware.RequireFreshAuth(h.reauthMaxAge),
		middleware.ConfirmPassword(h.auth),
		h.HandleDelete)
}

// HandleList returns every admin with its store.
func (h *AdminHandler) HandleList(c *fiber.Ctx) error {
	admins, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(admins)
}

// HandleRegister creates an admin together with its store.
func (h *AdminHandler) HandleRegister(c *fiber.Ctx) error {
	var in services.RegisterAdminInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(err)
	}
	admin, err := h.service.Register(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Admin registered successfully",
		"admin":   admin,
	})
}

// HandleUpdate edits an admin's name and email.
func (h *AdminHandler) HandleUpdate(c *fiber.Ctx) error {
	var in services.UpdateAdminInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(err)
	}
	admin, err := h.service.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Admin updated", "admin": admin})
}

// HandleUnlock clears a lockout.
func (h *AdminHandler) HandleUnlock(c *fiber.Ctx) error {
	if err := h.service.Unlock(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Admin unlocked"})
}

// HandleDelete removes an admin and everything its store owns.
func (h *AdminHandler) HandleDelete(c *fiber.Ctx) error {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), p, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
