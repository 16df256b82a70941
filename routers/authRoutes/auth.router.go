package authRoutes

import (
	authController "learnhub/controllers/auth"
	authValidators "learnhub/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, ctl *authController.Controller) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidators.Signup(), ctl.Signup)
	authGroup.Patch("/verify/email", authValidators.VerifyEmail(), ctl.VerifyEmail)
	authGroup.Post("/login", authValidators.Login(), ctl.Login)
	authGroup.Post("/password/forgot", authValidators.ForgotPassword(), ctl.ForgotPassword)
	authGroup.Patch("/password/reset", authValidators.ResetPassword(), ctl.ResetPassword)
}
