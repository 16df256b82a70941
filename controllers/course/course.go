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

func (ctl *Controller) CreateCourse(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CreateCourseRequest)
	if !ok {
		return apperrors.BadRequest("Invalid request data!")
	}
	db := ctl.db.WithContext(c.UserContext())

	user, err := ctl.loadUser(db, userID)
	if err != nil {
		return err
	}
	if entitlement.ParseRole(user.Role) != entitlement.RoleInstructor {
		return apperrors.NotAllowed("Only instructors can create courses!")
	}

	course := courseModels.Course{
		InstructorID: user.ID,
		Title:        reqData.Title,
		Description:  reqData.Description,
		Price:        reqData.Price,
		Currency:     reqData.Currency,
		Status:       "ACTIVE",
	}
	if course.Currency == "" {
		course.Currency = "usd"
	}
	if err := db.Create(&course).Error; err != nil {
		return apperrors.Internal("Failed to create course!", err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// GetCourse returns the course with its lessons and quizzes to the owner or an enrolled learner.
func (ctl *Controller) GetCourse(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	courseID := validators.LocalID(c, "id")
	db := ctl.db.WithContext(c.UserContext())

	grant, err := ctl.checker.CheckCourse(c.UserContext(), userID, courseID, entitlement.RelationMember)
	if err != nil {
		return err
	}

	var lessons []courseModels.Lesson
	if err := db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index ASC, id ASC").Find(&lessons).Error; err != nil {
		return apperrors.Internal("Failed to fetch lessons!", err)
	}
	var quizzes []courseModels.Quiz
	if err := db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("id ASC").Find(&quizzes).Error; err != nil {
		return apperrors.Internal("Failed to fetch quizzes!", err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully!", fiber.Map{
		"course":  grant.Course,
		"lessons": lessons,
		"quizzes": quizzes,
	})
}

// Enroll adds the caller to a free course. Paid courses are enrolled through checkout.
func (ctl *Controller) Enroll(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	courseID := validators.LocalID(c, "id")
	db := ctl.db.WithContext(c.UserContext())

	user, err := ctl.loadUser(db, userID)
	if err != nil {
		return err
	}
	if entitlement.ParseRole(user.Role) != entitlement.RoleLearner {
		return apperrors.NotAllowed("Only learners can enroll in courses!")
	}

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Course not found!")
		}
		return apperrors.Internal("Failed to load course!", err)
	}
	if course.Status != "ACTIVE" {
		return apperrors.BadRequest("Course is not open for enrollment!")
	}
	if course.Price > 0 {
		return apperrors.BadRequest("This course requires payment!")
	}

	var existing int64
	if err := db.Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).
		Count(&existing).Error; err != nil {
		return apperrors.Internal("Failed to check enrollment!", err)
	}
	if existing > 0 {
		return apperrors.Conflict("Already enrolled in this course!")
	}

	enrollment := courseModels.Enrollment{
		UserID:   userID,
		CourseID: courseID,
		Status:   "ENROLLED",
		Source:   courseModels.EnrollmentSourceFree,
	}
	if err := db.Create(&enrollment).Error; err != nil {
		return apperrors.Internal("Failed to enroll in course!", err)
	}

	subject, html := utils.EnrollmentEmail(user.Name, course.Title)
	if err := ctl.mailer.Send(c.UserContext(), utils.Recipient{Name: user.Name, Email: user.Email}, subject, html); err != nil {
		ctl.log.Error("enrollment email failed", "userId", userID, "courseId", courseID, "error", err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Successfully enrolled in course!", enrollment)
}

// MyEnrollments lists the caller's live enrollments with their courses.
func (ctl *Controller) MyEnrollments(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	type enrollmentWithCourse struct {
		courseModels.Enrollment
		CourseTitle string `json:"course_title"`
	}
	var rows []enrollmentWithCourse
	if err := ctl.db.WithContext(c.UserContext()).
		Table("enrollments").
		Select("enrollments.*, courses.title AS course_title").
		Joins("JOIN courses ON courses.id = enrollments.course_id AND courses.is_deleted = ?", false).
		Where("enrollments.user_id = ? AND enrollments.is_deleted = ? AND enrollments.deleted_at IS NULL", userID, false).
		Order("enrollments.created_at DESC").
		Scan(&rows).Error; err != nil {
		return apperrors.Internal("Failed to fetch enrollments!", err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", rows)
}
