package courseController

import (
	"errors"
	"time"

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

// IssueCertificate is used by the course owner to certify an enrolled learner.
func (ctl *Controller) IssueCertificate(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	reqData, ok := c.Locals("validatedCertificate").(*courseValidator.IssueCertificateRequest)
	if !ok {
		return apperrors.BadRequest("Invalid request data!")
	}
	courseID := validators.LocalID(c, "id")

	grant, err := ctl.checker.CheckCourse(c.UserContext(), userID, courseID, entitlement.RelationOwner)
	if err != nil {
		return err
	}

	var cert courseModels.Certificate
	err = ctl.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var enrollment courseModels.Enrollment
		if err := tx.Where("user_id = ? AND course_id = ? AND is_deleted = ?", reqData.UserID, courseID, false).
			First(&enrollment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Learner is not enrolled in this course!")
			}
			return apperrors.Internal("Failed to check enrollment!", err)
		}

		var existing int64
		if err := tx.Model(&courseModels.Certificate{}).
			Where("user_id = ? AND course_id = ? AND is_deleted = ?", reqData.UserID, courseID, false).
			Count(&existing).Error; err != nil {
			return apperrors.Internal("Failed to check certificates!", err)
		}
		if existing > 0 {
			return apperrors.Conflict("Certificate already exists!")
		}

		cert = courseModels.Certificate{
			UserID:            reqData.UserID,
			CourseID:          courseID,
			CertificateNumber: utils.GenerateCertificateNumber(courseID),
			IssuedAt:          time.Now().UTC(),
		}
		if err := tx.Create(&cert).Error; err != nil {
			return apperrors.Internal("Failed to issue certificate!", err)
		}
		if err := tx.Model(&enrollment).Update("status", "COMPLETED").Error; err != nil {
			return apperrors.Internal("Failed to complete enrollment!", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	ctl.log.Info("certificate issued", "courseId", grant.Course.ID, "learnerId", reqData.UserID)
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate issued successfully!", cert)
}

// GetCertificate returns a certificate to the course owner or to the learner it was issued to.
func (ctl *Controller) GetCertificate(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	certID := validators.LocalID(c, "id")

	ref := entitlement.Ref{Kind: entitlement.KindCertificate, ID: certID}
	grant, err := ctl.checker.Check(c.UserContext(), userID, ref, entitlement.RelationMember)
	if err != nil {
		return err
	}

	var cert courseModels.Certificate
	if err := ctl.db.WithContext(c.UserContext()).
		Where("id = ? AND is_deleted = ?", certID, false).
		First(&cert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Certificate not found!")
		}
		return apperrors.Internal("Failed to load certificate!", err)
	}
	if grant.Role == entitlement.RoleLearner && cert.UserID != userID {
		return apperrors.NotAllowed("This certificate belongs to another learner!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate fetched successfully!", fiber.Map{
		"certificate": cert,
		"course":      grant.Course,
	})
}

// MyCertificates lists certificates issued to the caller.
func (ctl *Controller) MyCertificates(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var certs []courseModels.Certificate
	if err := ctl.db.WithContext(c.UserContext()).
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("issued_at DESC").
		Find(&certs).Error; err != nil {
		return apperrors.Internal("Failed to fetch certificates!", err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", certs)
}
