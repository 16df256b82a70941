package userValidator

import (
	"strings"

	"learnhub/middleware"
	"learnhub/validators"

	"github.com/gofiber/fiber/v2"
)

// UpdateProfileRequest is sent as JSON or multipart; a new picture comes in the
// "image" file field.
type UpdateProfileRequest struct {
	Name string `json:"name" form:"name" validate:"omitempty,min=3,max=100"`
}

func UpdateProfile() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateProfileRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Name = strings.TrimSpace(reqData.Name)

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}
		if _, err := c.FormFile("image"); err != nil && reqData.Name == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"body": "Provide a name or an image to update!",
			})
		}

		c.Locals("validatedProfile", reqData)
		return c.Next()
	}
}

type ChangePasswordRequest struct {
	Code     string `json:"code" validate:"required,len=6,numeric"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func ChangePassword() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ChangePasswordRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Code = strings.TrimSpace(reqData.Code)

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPassword", reqData)
		return c.Next()
	}
}

type RequestEmailChangeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func RequestEmailChange() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(RequestEmailChangeRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedEmailChange", reqData)
		return c.Next()
	}
}

type ConfirmCodeRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

func ConfirmCode() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ConfirmCodeRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Code = strings.TrimSpace(reqData.Code)

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCode", reqData)
		return c.Next()
	}
}
