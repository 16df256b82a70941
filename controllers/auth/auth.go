package authController

import (
	"errors"
	"time"

	"learnhub/apperrors"
	"learnhub/config"
	"learnhub/logger"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/services/verifycode"
	authValidator "learnhub/validators/auth"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxFailedLogins   = 3
	loginBlockWindow  = time.Minute
	failedLoginWindow = 15 * time.Minute
)

type Controller struct {
	db    *gorm.DB
	codes *verifycode.Service
	cfg   *config.Config
	log   *logger.Logger
	now   func() time.Time
}

func New(db *gorm.DB, codes *verifycode.Service, cfg *config.Config, log *logger.Logger) *Controller {
	return &Controller{db: db, codes: codes, cfg: cfg, log: log.With("controller", "auth"), now: time.Now}
}

// Signup creates the account and mails a signup code. Signing up again with an
// address that was never verified replaces the pending account details.
func (ctl *Controller) Signup(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUser").(*authValidator.SignupRequest)
	if !ok {
		return apperrors.BadRequest("Invalid request data!")
	}
	db := ctl.db.WithContext(c.UserContext())

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), ctl.cfg.SaltRound)
	if err != nil {
		return apperrors.Internal("Failed to process your request!", err)
	}

	var user models.User
	err = db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user).Error
	switch {
	case err == nil && user.IsEmailVerified:
		return apperrors.Conflict("Email is already registered!")
	case err == nil:
		if err := db.Model(&user).Updates(map[string]interface{}{
			"name":     reqData.Name,
			"role":     reqData.Role,
			"password": string(hashedPassword),
		}).Error; err != nil {
			return apperrors.Internal("Failed to Signup user!", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Name:     reqData.Name,
			Email:    reqData.Email,
			Role:     reqData.Role,
			Password: string(hashedPassword),
		}
		if err := db.Create(&user).Error; err != nil {
			return apperrors.Internal("Failed to Signup user!", err)
		}
	default:
		return apperrors.Internal("Failed to Signup user!", err)
	}

	expiresAt, err := ctl.codes.Issue(c.UserContext(), verifycode.IssueRequest{
		User:     user,
		Reason:   verifycode.ReasonSignup,
		TargetID: user.ID,
		Subject:  "Verify your LearnHub email",
	})
	if err != nil {
		return err
	}

	ctl.log.Info("user signed up", "userId", user.ID, "role", user.Role)
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully. Check your email for the verification code.", fiber.Map{
		"user":       user,
		"expires_at": expiresAt,
	})
}

func (ctl *Controller) VerifyEmail(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedVerifyEmail").(*authValidator.VerifyEmailRequest)
	if !ok {
		return apperrors.BadRequest("Invalid request data!")
	}

	var user models.User
	err := ctl.db.WithContext(c.UserContext()).
		Where("email = ? AND is_deleted = ?", reqData.Email, false).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("User not found!")
	}
	if err != nil {
		return apperrors.Internal("Failed to load user!", err)
	}
	if user.IsEmailVerified {
		return apperrors.Conflict("Email already verified!")
	}

	err = ctl.codes.Confirm(c.UserContext(), user.ID, verifycode.ReasonSignup, user.ID, reqData.Code, func(tx *gorm.DB) error {
		return tx.Model(&models.User{}).Where("id = ?", user.ID).Update("is_email_verified", true).Error
	})
	if err != nil {
		return err
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Email verified successfully.", nil)
}

func (ctl *Controller) Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return apperrors.BadRequest("Invalid request data!")
	}
	db := ctl.db.WithContext(c.UserContext())

	var user models.User
	if err := db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Unauthorized("Invalid credentials!")
		}
		return apperrors.Internal("Failed to load user!", err)
	}

	if !user.IsEmailVerified {
		return apperrors.Unauthorized("Email not verified!")
	}

	now := ctl.now()
	if user.BlockedUntil != nil && user.BlockedUntil.After(now) {
		return apperrors.Unauthorized("Your account is temporarily blocked. Try again later.")
	}

	// failures older than the window no longer count
	if user.LastFailedLogin != nil && now.Sub(*user.LastFailedLogin) > failedLoginWindow {
		user.FailedLoginAttempts = 0
		user.LastFailedLogin = nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		user.FailedLoginAttempts++
		user.LastFailedLogin = &now
		if user.FailedLoginAttempts >= maxFailedLogins {
			unblockTime := now.Add(loginBlockWindow)
			user.BlockedUntil = &unblockTime
			ctl.log.Warn("user blocked after failed logins", "userId", user.ID)
		}
		if err := db.Model(&user).Select("failed_login_attempts", "last_failed_login", "blocked_until").
			Updates(&user).Error; err != nil {
			ctl.log.Error("failed to record login failure", "userId", user.ID, "error", err)
		}
		return apperrors.Unauthorized("Wrong Password")
	}

	user.LastLogin = &now
	user.FailedLoginAttempts = 0
	user.LastFailedLogin = nil
	user.BlockedUntil = nil
	if err := db.Model(&user).Select("last_login", "failed_login_attempts", "last_failed_login", "blocked_until").
		Updates(&user).Error; err != nil {
		ctl.log.Error("failed to save last login time", "userId", user.ID, "error", err)
	}

	token, err := middleware.GenerateJWT(ctl.cfg.JWTKey, user.ID, user.Name, user.Role, user.Email)
	if err != nil {
		return apperrors.Internal("Failed to generate token", err)
	}

	ctl.log.Info("user logged in", "userId", user.ID, "ip", c.IP())
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"user":  user,
		"token": token,
	})
}
