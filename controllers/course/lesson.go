package courseController

import (
	"errors"

	"learnhub/apperrors"
	"learnhub/middleware"
	courseModels "learnhub/models/course"
	"learnhub/services/entitlement"
	"learnhub/utils"
	"learnhub/validators"
	courseValidator "learnhub/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const lessonImageFolder = "lessons"

func (ctl *Controller) CreateLesson(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	reqData, ok := c.Locals("validatedLesson").(*courseValidator.CreateLessonRequest)
	if !ok {
		return apperrors.BadRequest("Invalid request data!")
	}
	courseID := validators.LocalID(c, "id")
	db := ctl.db.WithContext(c.UserContext())

	grant, err := ctl.checker.CheckCourse(c.UserContext(), userID, courseID, entitlement.RelationOwner)
	if err != nil {
		return err
	}
	if err := ensureUniqueLessonTitle(db, courseID, reqData.Title, 0); err != nil {
		return err
	}

	lesson := courseModels.Lesson{
		CourseID:     courseID,
		InstructorID: grant.Course.InstructorID,
		Title:        reqData.Title,
		Content:      reqData.Content,
		OrderIndex:   reqData.OrderIndex,
	}

	if file, err := c.FormFile("cover"); err == nil {
		img, err := ctl.images.Upload(c.UserContext(), file, lessonImageFolder)
		if err != nil {
			return apperrors.Internal("Failed to upload cover image!", err)
		}
		lesson.CoverImageURL = img.URL
		lesson.CoverPublicID = img.PublicID
	}

	if err := db.Create(&lesson).Error; err != nil {
		ctl.discardImage(c, lesson.CoverPublicID)
		return apperrors.Internal("Failed to create lesson!", err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

// UpdateLesson changes a lesson's title, content, cover image or course. Moving a
// lesson requires owning both courses and only succeeds if nobody moved it first.
func (ctl *Controller) UpdateLesson(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	reqData, ok := c.Locals("validatedLessonUpdate").(*courseValidator.UpdateLessonRequest)
	if !ok {
		return apperrors.BadRequest("Invalid request data!")
	}
	lessonID := validators.LocalID(c, "id")
	ctx := c.UserContext()
	db := ctl.db.WithContext(ctx)

	if _, err := ctl.checker.Check(ctx, userID, entitlement.Ref{Kind: entitlement.KindLesson, ID: lessonID}, entitlement.RelationOwner); err != nil {
		return err
	}

	var lesson courseModels.Lesson
	if err := db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Lesson not found!")
		}
		return apperrors.Internal("Failed to load lesson!", err)
	}

	updates := map[string]interface{}{}
	title := lesson.Title
	if reqData.Title != "" {
		if reqData.Title == lesson.Title {
			return apperrors.Conflict("New title is the same as the current title!")
		}
		title = reqData.Title
		updates["title"] = reqData.Title
	}
	if reqData.Content != "" {
		updates["content"] = reqData.Content
	}

	destCourseID := lesson.CourseID
	if reqData.CourseID != 0 {
		if reqData.CourseID == lesson.CourseID {
			return apperrors.Conflict("Lesson already belongs to this course!")
		}
		if _, err := ctl.checker.CheckCourse(ctx, userID, reqData.CourseID, entitlement.RelationOwner); err != nil {
			return err
		}
		destCourseID = reqData.CourseID
		updates["course_id"] = reqData.CourseID
	}

	if _, changed := updates["title"]; changed || destCourseID != lesson.CourseID {
		if err := ensureUniqueLessonTitle(db, destCourseID, title, lesson.ID); err != nil {
			return err
		}
	}

	var uploaded *utils.UploadedImage
	if file, err := c.FormFile("cover"); err == nil {
		uploaded, err = ctl.images.Upload(ctx, file, lessonImageFolder)
		if err != nil {
			return apperrors.Internal("Failed to upload cover image!", err)
		}
		updates["cover_image_url"] = uploaded.URL
		updates["cover_public_id"] = uploaded.PublicID
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&courseModels.Lesson{}).
			Where("id = ? AND course_id = ? AND is_deleted = ?", lesson.ID, lesson.CourseID, false).
			Updates(updates)
		if res.Error != nil {
			return apperrors.Internal("Failed to update lesson!", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.Conflict("Lesson was changed by another request, please retry!")
		}
		return nil
	})
	if err != nil {
		if uploaded != nil {
			ctl.discardImage(c, uploaded.PublicID)
		}
		return err
	}

	if uploaded != nil && reqData.OldPublicID != "" {
		ctl.discardImage(c, reqData.OldPublicID)
	}

	if err := db.First(&lesson, lesson.ID).Error; err != nil {
		return apperrors.Internal("Failed to load lesson!", err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", lesson)
}

func ensureUniqueLessonTitle(db *gorm.DB, courseID uint, title string, exceptID uint) error {
	var count int64
	if err := db.Model(&courseModels.Lesson{}).
		Where("course_id = ? AND title = ? AND id <> ? AND is_deleted = ?", courseID, title, exceptID, false).
		Count(&count).Error; err != nil {
		return apperrors.Internal("Failed to check lesson title!", err)
	}
	if count > 0 {
		return apperrors.Conflict("A lesson with this title already exists in the course!")
	}
	return nil
}

// discardImage removes a hosted image. Failures only leave an orphaned file behind.
func (ctl *Controller) discardImage(c *fiber.Ctx, publicID string) {
	if publicID == "" {
		return
	}
	if err := ctl.images.Destroy(c.UserContext(), publicID); err != nil {
		ctl.log.Warn("failed to destroy image", "publicId", publicID, "error", err)
	}
}
