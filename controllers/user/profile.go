package userController

import (
	"errors"

	"learnhub/apperrors"
	"learnhub/config"
	"learnhub/logger"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/services/verifycode"
	"learnhub/utils"
	userValidator "learnhub/validators/user"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const profileImageFolder = "profiles"

type Controller struct {
	db     *gorm.DB
	codes  *verifycode.Service
	images utils.ImageStore
	cfg    *config.Config
	log    *logger.Logger
}

func New(db *gorm.DB, codes *verifycode.Service, images utils.ImageStore, cfg *config.Config, log *logger.Logger) *Controller {
	return &Controller{db: db, codes: codes, images: images, cfg: cfg, log: log.With("controller", "user")}
}

func (ctl *Controller) currentUser(c *fiber.Ctx) (models.User, error) {
	var user models.User
	userID, err := middleware.UserID(c)
	if err != nil {
		return user, err
	}
	err = ctl.db.WithContext(c.UserContext()).
		Where("id = ? AND is_deleted = ?", userID, false).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, apperrors.NotFound("User not found!")
	}
	if err != nil {
		return user, apperrors.Internal("Failed to load user!", err)
	}
	return user, nil
}

func (ctl *Controller) GetProfile(c *fiber.Ctx) error {
	user, err := ctl.currentUser(c)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully!", user)
}

// UpdateProfile changes the display name and/or the profile picture. The previous
// picture is removed from the image host once the new one is saved.
func (ctl *Controller) UpdateProfile(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedProfile").(*userValidator.UpdateProfileRequest)
	if !ok {
		return apperrors.BadRequest("Invalid request data!")
	}
	user, err := ctl.currentUser(c)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if reqData.Name != "" {
		updates["name"] = reqData.Name
	}

	var uploaded *utils.UploadedImage
	if file, err := c.FormFile("image"); err == nil {
		uploaded, err = ctl.images.Upload(c.UserContext(), file, profileImageFolder)
		if err != nil {
			return apperrors.Internal("Failed to upload profile image!", err)
		}
		updates["profile_image"] = uploaded.URL
		updates["profile_image_id"] = uploaded.PublicID
	}

	db := ctl.db.WithContext(c.UserContext())
	previousImage := user.ProfileImageID
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		if uploaded != nil {
			ctl.discardImage(c, uploaded.PublicID)
		}
		return apperrors.Internal("Failed to update profile!", err)
	}
	if uploaded != nil {
		ctl.discardImage(c, previousImage)
	}

	if err := db.First(&user, user.ID).Error; err != nil {
		return apperrors.Internal("Failed to load user!", err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully!", user)
}

func (ctl *Controller) discardImage(c *fiber.Ctx, publicID string) {
	if publicID == "" {
		return
	}
	if err := ctl.images.Destroy(c.UserContext(), publicID); err != nil {
		ctl.log.Warn("failed to destroy image", "publicId", publicID, "error", err)
	}
}
