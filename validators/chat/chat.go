package chatValidator

import (
	"strings"

	"learnhub/middleware"
	"learnhub/validators"

	"github.com/gofiber/fiber/v2"
)

type CreateRoomRequest struct {
	CourseID uint   `json:"course_id" validate:"required"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
}

func CreateRoom() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateRoomRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Name = strings.TrimSpace(reqData.Name)

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedRoom", reqData)
		return c.Next()
	}
}

type PostMessageRequest struct {
	Body string `json:"body" validate:"required,max=4000"`
}

func PostMessage() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(PostMessageRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Body = strings.TrimSpace(reqData.Body)

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedMessage", reqData)
		return c.Next()
	}
}
