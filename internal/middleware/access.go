// Package middleware is the per-request authorization chain. Every check
// either calls the next handler or returns an *apperrors.Error; none of them
// lets an unexpected failure through as a pass.
package middleware

import (
	"context"
	"errors"
	"slices"
	"time"

	"qrmenu/internal/access"
	"qrmenu/internal/apperrors"
	"qrmenu/internal/models"
	"qrmenu/internal/repositories"
	"qrmenu/internal/services"
	"qrmenu/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	principalLocalsKey = "principal"
	userLocalsKey      = "user"
)

var errNoPrincipal = errors.New("authorization chain did not establish a principal")

func setPrincipal(c *fiber.Ctx, p access.Principal) {
	c.Locals(principalLocalsKey, p)
}

// PrincipalFrom returns the caller established by Authenticate. A missing
// principal is an internal error, never an anonymous pass.
func PrincipalFrom(c *fiber.Ctx) (access.Principal, error) {
	p, ok := c.Locals(principalLocalsKey).(access.Principal)
	if !ok || p.UserID == "" {
		return access.Principal{}, apperrors.Internal(errNoPrincipal)
	}
	return p, nil
}

// UserFrom returns the account loaded by Authenticate.
func UserFrom(c *fiber.Ctx) (*models.User, error) {
	u, ok := c.Locals(userLocalsKey).(*models.User)
	if !ok || u == nil {
		return nil, apperrors.Internal(errNoPrincipal)
	}
	return u, nil
}

// Timeout bounds every downstream call made with c.UserContext().
func Timeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// RequireRoles rejects callers whose role is not in roles.
func RequireRoles(roles ...access.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := PrincipalFrom(c)
		if err != nil {
			return err
		}
		if !slices.Contains(roles, p.Role) {
			return apperrors.Forbidden("role_not_allowed")
		}
		return c.Next()
	}
}

// ResolveTenant fixes the caller's scope: an admin is bound to the store it
// owns, a superadmin is explicitly unrestricted. An admin without a store is
// a dangling account and gets NotFound.
func ResolveTenant(stores repositories.StoreRepository, base *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := PrincipalFrom(c)
		if err != nil {
			return err
		}

		switch p.Role {
		case access.RoleSuperadmin:
			p.Scope = access.Unrestricted()
		case access.RoleAdmin:
			store, err := stores.GetByAdminID(c.UserContext(), p.UserID)
			if err != nil {
				if apperrors.KindOf(err) == apperrors.KindNotFound {
					logger.FromCtx(c, base).Warn("Admin has no store", zap.String("user_id", p.UserID))
					return apperrors.NotFound("store")
				}
				return err
			}
			p.Scope = access.StoreScope(store.ID)
		default:
			return apperrors.Forbidden("role_not_allowed")
		}

		setPrincipal(c, p)
		return c.Next()
	}
}

// EnforceStoreParam applies the tenant rule to the store id in route param.
func EnforceStoreParam(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := PrincipalFrom(c)
		if err != nil {
			return err
		}
		if err := p.AuthorizeStore(c.Params(param)); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireFreshAuth rejects tokens issued more than maxAge ago, whatever
// their expiry.
func RequireFreshAuth(maxAge time.Duration) fiber.Handler {
	return requireFreshAuth(maxAge, time.Now)
}

func requireFreshAuth(maxAge time.Duration, now func() time.Time) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := PrincipalFrom(c)
		if err != nil {
			return err
		}
		if p.IssuedAt.IsZero() || now().Sub(p.IssuedAt) > maxAge {
			return apperrors.Unauthenticated("reauthentication_required")
		}
		return c.Next()
	}
}

// ConfirmPassword requires the caller's own password in the JSON body field
// "password". It does not count as a login attempt. The field is removed
// from the body before the next handler runs.
func ConfirmPassword(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := PrincipalFrom(c)
		if err != nil {
			return err
		}

		cfg := c.App().Config()
		body := map[string]any{}
		if len(c.Body()) > 0 {
			if err := cfg.JSONDecoder(c.Body(), &body); err != nil {
				return apperrors.Validation("body", "json")
			}
		}
		password, _ := body["password"].(string)
		if password == "" {
			return apperrors.Validation("password", "required")
		}
		delete(body, "password")

		if err := auth.ConfirmPassword(c.UserContext(), p.UserID, password); err != nil {
			return err
		}

		stripped, err := cfg.JSONEncoder(body)
		if err != nil {
			return apperrors.Internal(err)
		}
		c.Request().SetBody(stripped)
		return c.Next()
	}
}
