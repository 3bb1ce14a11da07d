package handlers

import (
	"time"

	"qrmenu/internal/apperrors"
	"qrmenu/internal/middleware"
	"qrmenu/internal/services"
	"qrmenu/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService  *services.AuthService
	cookieSecure bool
	cookieTTL    time.Duration
	log          *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, cookieTTL time.Duration, cookieSecure bool, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieSecure: cookieSecure,
		cookieTTL:    cookieTTL,
		log:          log,
	}
}

// RegisterRoutes registers the authentication routes. authn guards the
// routes that need a session.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, authn fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
	authRoutes.Get("/me", authn, h.HandleMe)
	authRoutes.Put("/password", authn, h.HandleChangePassword)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin authenticates the caller, sets the session cookie and returns
// the token for API clients.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.InvalidCredentials()
	}

	res, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindInvalidCredentials || apperrors.KindOf(err) == apperrors.KindAccountLocked {
			logger.FromCtx(c, h.log).Info("Login failed", zap.String("reason", string(apperrors.KindOf(err))), zap.String("ip", c.IP()))
		}
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    res.Token,
		Path:     "/",
		Expires:  time.Now().Add(h.cookieTTL),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   res.Token,
		"user":    res.User,
	})
}

// HandleLogout clears the session cookie.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	c.ClearCookie(middleware.TokenCookie)
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// HandleMe returns the authenticated account.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	user, err := middleware.UserFrom(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user})
}

// ChangePasswordRequest is the body of a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleChangePassword replaces the caller's password.
func (h *AuthHandler) HandleChangePassword(c *fiber.Ctx) error {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}
	if err := h.authService.ChangePassword(c.UserContext(), p.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password updated"})
}
