package middleware

import (
	"errors"

	"learnhub/apperrors"
	"learnhub/logger"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// ErrorHandler turns every error a handler returns into the JSON envelope.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			if appErr.Kind == apperrors.KindInternal {
				log.Error("request failed",
					"method", c.Method(), "path", c.Path(), "error", err)
			}
			return JsonResponse(c, appErr.Kind.HTTPStatus(), false, appErr.Message, nil)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return JsonResponse(c, fiberErr.Code, false, fiberErr.Message, nil)
		}

		log.Error("unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
		return JsonResponse(c, fiber.StatusInternalServerError, false, "Internal server error!", nil)
	}
}
