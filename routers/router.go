// Package routers builds the fiber app and mounts every route group.
package routers

import (
	"learnhub/config"
	authController "learnhub/controllers/auth"
	chatController "learnhub/controllers/chat"
	courseController "learnhub/controllers/course"
	paymentController "learnhub/controllers/payment"
	userController "learnhub/controllers/user"
	"learnhub/logger"
	"learnhub/middleware"
	"learnhub/routers/authRoutes"
	"learnhub/routers/chatRoutes"
	"learnhub/routers/courseRoutes"
	"learnhub/routers/paymentRoutes"
	"learnhub/routers/userRoutes"
	"learnhub/services/deletion"
	"learnhub/services/entitlement"
	"learnhub/services/payment"
	"learnhub/services/verifycode"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// Deps are the collaborators the handlers are built from.
type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	Log    *logger.Logger
	Mailer utils.Mailer
	Codes  *verifycode.Service
	Images utils.ImageStore
}

// Options toggles optional middleware. AccessLog enables the request logger and
// UploadDir serves locally stored images.
type Options struct {
	AccessLog bool
	UploadDir string
}

func NewApp(deps Deps, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(deps.Log),
		BodyLimit:    10 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization,Stripe-Signature",
	}))
	if opts.AccessLog {
		app.Use(fiberLogger.New(fiberLogger.Config{
			Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
		}))
	}

	if opts.UploadDir != "" {
		app.Static(utils.UploadsPath, opts.UploadDir)
	}

	checker := entitlement.New(deps.DB)
	workflow := deletion.New(checker, deps.Codes, deps.Log)
	auth := middleware.JWTMiddleware(deps.Config.JWTKey)

	authRoutes.SetupAuthRoutes(app, authController.New(deps.DB, deps.Codes, deps.Config, deps.Log))
	courseRoutes.SetupCourseRoutes(app,
		courseController.New(deps.DB, checker, workflow, deps.Images, deps.Mailer, deps.Log), auth)
	userRoutes.SetupUserRoutes(app,
		userController.New(deps.DB, deps.Codes, deps.Images, deps.Config, deps.Log), auth)
	chatRoutes.SetupChatRoutes(app, chatController.New(deps.DB, checker, deps.Log), auth)
	paymentRoutes.SetupPaymentRoutes(app,
		paymentController.New(payment.NewDispatcher(deps.DB, deps.Mailer, deps.Log), deps.Config.StripeWebhookSecret, deps.Log))

	return app
}
