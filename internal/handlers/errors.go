package handlers

import (
	"errors"

	"qrmenu/internal/apperrors"
	"qrmenu/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// StatusOf maps an error kind to its HTTP status.
func StatusOf(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindInvalidCredentials, apperrors.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case apperrors.KindAccountLocked:
		return fiber.StatusLocked
	case apperrors.KindForbidden:
		return fiber.StatusForbidden
	case apperrors.KindNotFound:
		return fiber.StatusNotFound
	case apperrors.KindValidationFailed:
		return fiber.StatusBadRequest
	case apperrors.KindQuotaExceeded, apperrors.KindConflict:
		return fiber.StatusConflict
	case apperrors.KindUpstreamUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders every error as {"message", "reason"[, "field"]}.
// Internal causes are logged and never sent to the client.
func ErrorHandler(base *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if _, isApp := apperrors.As(err); !isApp && errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"message": fe.Message,
				"reason":  "http_error",
			})
		}

		appErr := apperrors.From(err)
		status := StatusOf(appErr.Kind)
		if status >= fiber.StatusInternalServerError {
			logger.FromCtx(c, base).Error("Request failed",
				zap.String("kind", string(appErr.Kind)),
				zap.String("reason", appErr.Reason),
				zap.Error(appErr.Err))
		}

		body := fiber.Map{
			"message": appErr.Message,
			"reason":  appErr.Reason,
		}
		if appErr.Field != "" {
			body["field"] = appErr.Field
		}
		return c.Status(status).JSON(body)
	}
}

func badBody(err error) error {
	return apperrors.Wrap(apperrors.KindValidationFailed, "invalid_body", "Invalid request body", err)
}
