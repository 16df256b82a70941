package userRoutes

import (
	userController "learnhub/controllers/user"
	userValidators "learnhub/validators/user"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, ctl *userController.Controller, auth fiber.Handler) {
	userGroup := app.Group("/user")

	userGroup.Get("/profile", auth, ctl.GetProfile)
	userGroup.Patch("/profile", auth, userValidators.UpdateProfile(), ctl.UpdateProfile)
	userGroup.Post("/password/code", auth, ctl.RequestPasswordChange)
	userGroup.Patch("/password", auth, userValidators.ChangePassword(), ctl.ChangePassword)
	userGroup.Post("/email/code", auth, userValidators.RequestEmailChange(), ctl.RequestEmailChange)
	userGroup.Patch("/email", auth, userValidators.ConfirmCode(), ctl.ChangeEmail)
}
