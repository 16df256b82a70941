package courseValidator

import (
	"strings"

	"learnhub/middleware"
	"learnhub/validators"

	"github.com/gofiber/fiber/v2"
)

type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"required,min=5"`
	Price       int64  `json:"price" validate:"gte=0"`
	Currency    string `json:"currency" validate:"omitempty,len=3"`
}

func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateCourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Description = strings.TrimSpace(reqData.Description)
		reqData.Currency = strings.ToLower(strings.TrimSpace(reqData.Currency))

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

type CreateLessonRequest struct {
	Title      string `json:"title" form:"title" validate:"required,min=3,max=200"`
	Content    string `json:"content" form:"content" validate:"required"`
	OrderIndex int    `json:"order_index" form:"order_index" validate:"gte=0"`
}

func CreateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateLessonRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}

// UpdateLessonRequest is sent as JSON or multipart; a cover image comes in the
// "cover" file field.
type UpdateLessonRequest struct {
	Title       string `json:"title" form:"title" validate:"omitempty,min=3,max=200"`
	Content     string `json:"content" form:"content"`
	CourseID    uint   `json:"course_id" form:"course_id"`
	OldPublicID string `json:"old_public_id" form:"old_public_id"`
}

func UpdateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateLessonRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.OldPublicID = strings.TrimSpace(reqData.OldPublicID)

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		_, fileErr := c.FormFile("cover")
		hasCover := fileErr == nil
		if reqData.Title == "" && reqData.Content == "" && reqData.CourseID == 0 && !hasCover {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"body": "Provide a title, content, course_id or cover image to update!",
			})
		}

		c.Locals("validatedLessonUpdate", reqData)
		return c.Next()
	}
}

type CreateQuizRequest struct {
	Title string `json:"title" validate:"required,min=3,max=200"`
}

func CreateQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateQuizRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuiz", reqData)
		return c.Next()
	}
}

type CreateQuestionRequest struct {
	QuestionText  string   `json:"question_text" validate:"required,min=3"`
	Options       []string `json:"options" validate:"required,min=2,max=10,dive,required"`
	CorrectOption *int     `json:"correct_option" validate:"required,gte=0"`
	Points        int      `json:"points" validate:"gte=0"`
}

func CreateQuestion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateQuestionRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}
		if *reqData.CorrectOption >= len(reqData.Options) {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"correct_option": "correct_option must point at one of the options!",
			})
		}
		if reqData.Points == 0 {
			reqData.Points = 1
		}

		c.Locals("validatedQuestion", reqData)
		return c.Next()
	}
}

type IssueCertificateRequest struct {
	UserID uint `json:"user_id" validate:"required"`
}

func IssueCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(IssueCertificateRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCertificate", reqData)
		return c.Next()
	}
}

type ConfirmDeleteRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

func ConfirmDelete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ConfirmDeleteRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Code = strings.TrimSpace(reqData.Code)

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedConfirmDelete", reqData)
		return c.Next()
	}
}
