package middleware

import (
	"errors"
	"strings"

	"qrmenu/internal/apperrors"
	"qrmenu/internal/metrics"
	"qrmenu/internal/services"
	"qrmenu/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TokenCookie is the cookie carrying the session token for browser clients.
const TokenCookie = "token"

// tokenFrom extracts the bearer token from the Authorization header, falling
// back to the session cookie.
func tokenFrom(c *fiber.Ctx) (string, error) {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", apperrors.Unauthenticated("malformed_authorization_header")
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if cookie := c.Cookies(TokenCookie); cookie != "" {
		return cookie, nil
	}
	return "", apperrors.Unauthenticated("missing_token")
}

// Authenticate verifies the session token and loads the caller. Every token
// failure reaches the client as the same invalid_token reason; the specific
// kind is only logged and counted. Deleted accounts are rejected and locked
// ones get AccountLocked.
func Authenticate(auth *services.AuthService, tokens *services.TokenService, base *zap.Logger, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := logger.FromCtx(c, base)

		tokenString, err := tokenFrom(c)
		if err != nil {
			return err
		}

		verified, err := tokens.Verify(tokenString)
		if err != nil {
			var te *services.TokenError
			if !errors.As(err, &te) {
				return apperrors.Internal(err)
			}
			m.RecordTokenFailure(string(te.Kind))
			fields := []zap.Field{zap.String("kind", string(te.Kind)), zap.String("ip", c.IP())}
			if te.Kind == services.TokenExpired {
				log.Info("Session token rejected", fields...)
			} else {
				log.Warn("Session token rejected", fields...)
			}
			return apperrors.Unauthenticated("invalid_token")
		}

		user, err := auth.LoadActiveUser(c.UserContext(), verified.UserID)
		if err != nil {
			return err
		}
		if user.Role != verified.Role {
			log.Warn("Token role no longer matches account", zap.String("user_id", user.ID))
			return apperrors.Unauthenticated("invalid_token")
		}

		setPrincipal(c, services.Principal(user, verified.IssuedAt))
		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}
