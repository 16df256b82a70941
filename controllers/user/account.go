package userController

import (
	"learnhub/apperrors"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/services/verifycode"
	userValidator "learnhub/validators/user"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RequestPasswordChange mails an update-password code to the account address.
func (ctl *Controller) RequestPasswordChange(c *fiber.Ctx) error {
	user, err := ctl.currentUser(c)
	if err != nil {
		return err
	}

	expiresAt, err := ctl.codes.Issue(c.UserContext(), verifycode.IssueRequest{
		User:     user,
		Reason:   verifycode.ReasonUpdatePassword,
		TargetID: user.ID,
		Subject:  "Confirm your LearnHub password change",
	})
	if err != nil {
		return err
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Verification code sent to your email.", fiber.Map{
		"expires_at": expiresAt,
	})
}

// ChangePassword spends the update-password code and stores the new hash in the
// same transaction. Any login lockout is cleared.
func (ctl *Controller) ChangePassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedPassword").(*userValidator.ChangePasswordRequest)
	if !ok {
		return apperrors.BadRequest("Invalid request data!")
	}
	user, err := ctl.currentUser(c)
	if err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), ctl.cfg.SaltRound)
	if err != nil {
		return apperrors.Internal("Failed to process your request!", err)
	}

	err = ctl.codes.Confirm(c.UserContext(), user.ID, verifycode.ReasonUpdatePassword, user.ID, reqData.Code, func(tx *gorm.DB) error {
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

	ctl.log.Info("password changed", "userId", user.ID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password updated successfully.", nil)
}

// RequestEmailChange parks the new address on the account and mails an
// update-email code to it, proving the caller controls that inbox.
func (ctl *Controller) RequestEmailChange(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedEmailChange").(*userValidator.RequestEmailChangeRequest)
	if !ok {
		return apperrors.BadRequest("Invalid request data!")
	}
	user, err := ctl.currentUser(c)
	if err != nil {
		return err
	}
	if reqData.Email == user.Email {
		return apperrors.Conflict("New email is the same as the current email!")
	}
	db := ctl.db.WithContext(c.UserContext())

	if err := ensureEmailFree(db, reqData.Email, user.ID); err != nil {
		return err
	}
	if err := db.Model(&user).Update("pending_email", reqData.Email).Error; err != nil {
		return apperrors.Internal("Failed to update email!", err)
	}

	recipient := user
	recipient.Email = reqData.Email
	expiresAt, err := ctl.codes.Issue(c.UserContext(), verifycode.IssueRequest{
		User:     recipient,
		Reason:   verifycode.ReasonUpdateEmail,
		TargetID: user.ID,
		Subject:  "Confirm your new LearnHub email",
	})
	if err != nil {
		return err
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Verification code sent to your new email.", fiber.Map{
		"expires_at": expiresAt,
	})
}

// ChangeEmail spends the update-email code and swaps in the pending address.
func (ctl *Controller) ChangeEmail(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCode").(*userValidator.ConfirmCodeRequest)
	if !ok {
		return apperrors.BadRequest("Invalid request data!")
	}
	user, err := ctl.currentUser(c)
	if err != nil {
		return err
	}
	if user.PendingEmail == "" {
		return apperrors.BadRequest("No email change was requested!")
	}

	err = ctl.codes.Confirm(c.UserContext(), user.ID, verifycode.ReasonUpdateEmail, user.ID, reqData.Code, func(tx *gorm.DB) error {
		if err := ensureEmailFree(tx, user.PendingEmail, user.ID); err != nil {
			return err
		}
		res := tx.Model(&models.User{}).
			Where("id = ? AND pending_email = ?", user.ID, user.PendingEmail).
			Updates(map[string]interface{}{"email": user.PendingEmail, "pending_email": ""})
		if res.Error != nil {
			return apperrors.Internal("Failed to update email!", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.Conflict("Email change was replaced by a newer request!")
		}
		return nil
	})
	if err != nil {
		return err
	}

	ctl.log.Info("email changed", "userId", user.ID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Email updated successfully.", fiber.Map{
		"email": user.PendingEmail,
	})
}

func ensureEmailFree(db *gorm.DB, email string, exceptID uint) error {
	var count int64
	if err := db.Model(&models.User{}).
		Where("(email = ? OR pending_email = ?) AND id <> ? AND is_deleted = ?", email, email, exceptID, false).
		Count(&count).Error; err != nil {
		return apperrors.Internal("Failed to check email!", err)
	}
	if count > 0 {
		return apperrors.Conflict("Email is already registered!")
	}
	return nil
}
