package transport

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/sms-bridge/internal/bridge"
	"github.com/kursadbilgin/sms-bridge/internal/domain"
	"go.uber.org/zap"
)

// ErrorHandler renders bridge rejections as {code, message} and everything else as {error}.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *fiber.Ctx, err error) error {
		if rejection, ok := bridge.AsError(err); ok {
			logger.Warn("request rejected",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", StatusForKind(rejection.Kind)),
				zap.String("code", rejection.Code),
				zap.String("kind", rejection.Kind.String()),
				zap.Error(err),
			)
			return WriteRejection(c, rejection)
		}

		code := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error("request error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}

// WriteRejection renders a bridge rejection as {code, message} with a status derived from its kind.
func WriteRejection(c *fiber.Ctx, rejection *bridge.Error) error {
	return c.Status(StatusForKind(rejection.Kind)).JSON(fiber.Map{
		"code":    rejection.Code,
		"message": rejection.Message,
	})
}

func StatusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidArgument:
		return fiber.StatusBadRequest
	case domain.KindPermissionDenied:
		return fiber.StatusForbidden
	case domain.KindTransientSendFailure, domain.KindPermissionQueryFailed:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
