package courseController

import (
	"encoding/json"
	"errors"

	"learnhub/apperrors"
	"learnhub/middleware"
	courseModels "learnhub/models/course"
	"learnhub/services/entitlement"
	"learnhub/validators"
	courseValidator "learnhub/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func (ctl *Controller) CreateQuiz(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	reqData, ok := c.Locals("validatedQuiz").(*courseValidator.CreateQuizRequest)
	if !ok {
		return apperrors.BadRequest("Invalid request data!")
	}
	courseID := validators.LocalID(c, "id")

	if _, err := ctl.checker.CheckCourse(c.UserContext(), userID, courseID, entitlement.RelationOwner); err != nil {
		return err
	}

	quiz := courseModels.Quiz{CourseID: courseID, Title: reqData.Title}
	if err := ctl.db.WithContext(c.UserContext()).Create(&quiz).Error; err != nil {
		return apperrors.Internal("Failed to create quiz!", err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully!", quiz)
}

func (ctl *Controller) CreateQuestion(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	reqData, ok := c.Locals("validatedQuestion").(*courseValidator.CreateQuestionRequest)
	if !ok {
		return apperrors.BadRequest("Invalid request data!")
	}
	quizID := validators.LocalID(c, "id")

	ref := entitlement.Ref{Kind: entitlement.KindQuiz, ID: quizID}
	if _, err := ctl.checker.Check(c.UserContext(), userID, ref, entitlement.RelationOwner); err != nil {
		return err
	}

	options, err := json.Marshal(reqData.Options)
	if err != nil {
		return apperrors.Internal("Failed to encode options!", err)
	}
	question := courseModels.Question{
		QuizID:        quizID,
		QuestionText:  reqData.QuestionText,
		Options:       datatypes.JSON(options),
		CorrectOption: reqData.CorrectOption,
		Points:        reqData.Points,
	}
	if err := ctl.db.WithContext(c.UserContext()).Create(&question).Error; err != nil {
		return apperrors.Internal("Failed to create question!", err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question created successfully!", question)
}

// GetQuestion returns a question to the course owner or an enrolled learner.
// Learners never see the correct option.
func (ctl *Controller) GetQuestion(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	questionID := validators.LocalID(c, "id")

	ref := entitlement.Ref{Kind: entitlement.KindQuestion, ID: questionID}
	grant, err := ctl.checker.Check(c.UserContext(), userID, ref, entitlement.RelationMember)
	if err != nil {
		return err
	}

	var question courseModels.Question
	if err := ctl.db.WithContext(c.UserContext()).
		Where("id = ? AND is_deleted = ?", questionID, false).
		First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Question not found!")
		}
		return apperrors.Internal("Failed to load question!", err)
	}
	if grant.Role != entitlement.RoleInstructor {
		question.CorrectOption = nil
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question fetched successfully!", question)
}
