package courseController

import (
	"errors"

	"learnhub/apperrors"
	"learnhub/logger"
	"learnhub/models"
	"learnhub/services/deletion"
	"learnhub/services/entitlement"
	"learnhub/utils"

	"gorm.io/gorm"
)

type Controller struct {
	db       *gorm.DB
	checker  *entitlement.Checker
	deletion *deletion.Workflow
	images   utils.ImageStore
	mailer   utils.Mailer
	log      *logger.Logger
}

func New(db *gorm.DB, checker *entitlement.Checker, workflow *deletion.Workflow, images utils.ImageStore, mailer utils.Mailer, log *logger.Logger) *Controller {
	return &Controller{
		db:       db,
		checker:  checker,
		deletion: workflow,
		images:   images,
		mailer:   mailer,
		log:      log.With("controller", "course"),
	}
}

func (ctl *Controller) loadUser(db *gorm.DB, userID uint) (models.User, error) {
	var user models.User
	err := db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, apperrors.NotFound("User not found!")
	}
	if err != nil {
		return user, apperrors.Internal("Failed to load user!", err)
	}
	return user, nil
}
