package authController

import (
	"errors"

	"learnhub/apperrors"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/services/verifycode"
	authValidator "learnhub/validators/auth"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const forgotPasswordMessage = "If the email is registered, a verification code has been sent."

// ForgotPassword mails a password reset code to a verified account. The response
// is the same whether or not the address is known.
func (ctl *Controller) ForgotPassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedForgotPassword").(*authValidator.ForgotPasswordRequest)
	if !ok {
		return apperrors.BadRequest("Invalid request data!")
	}

	var user models.User
	err := ctl.db.WithContext(c.UserContext()).
		Where("email = ? AND is_deleted = ? AND is_email_verified = ?", reqData.Email, false, true).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusOK, true, forgotPasswordMessage, nil)
	}
	if err != nil {
		return apperrors.Internal("Failed to load user!", err)
	}

	if _, err := ctl.codes.Issue(c.UserContext(), verifycode.IssueRequest{
		User:     user,
		Reason:   verifycode.ReasonUpdatePasswordVerified,
		TargetID: user.ID,
		Subject:  "Reset your LearnHub password",
	}); err != nil {
		return err
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, forgotPasswordMessage, nil)
}

// ResetPassword spends the reset code and stores the new password. It also lifts
// any login block.
func (ctl *Controller) ResetPassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedResetPassword").(*authValidator.ResetPasswordRequest)
	if !ok {
		return apperrors.BadRequest("Invalid request data!")
	}
	db := ctl.db.WithContext(c.UserContext())

	var user models.User
	err := db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.InvalidCode("Invalid verification code!")
	}
	if err != nil {
		return apperrors.Internal("Failed to load user!", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), ctl.cfg.SaltRound)
	if err != nil {
		return apperrors.Internal("Failed to process your request!", err)
	}

	err = ctl.codes.Confirm(c.UserContext(), user.ID, verifycode.ReasonUpdatePasswordVerified, user.ID, reqData.Code, func(tx *gorm.DB) error {
		return tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
			"password":              string(hashedPassword),
			"failed_login_attempts": 0,
			"last_failed_login":     nil,
			"blocked_until":         nil,
		}).Error
	})
	if err != nil {
		return err
	}

	ctl.log.Info("password reset", "userId", user.ID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password reset successfully.", nil)
}
