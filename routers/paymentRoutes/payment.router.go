package paymentRoutes

import (
	paymentController "learnhub/controllers/payment"

	"github.com/gofiber/fiber/v2"
)

// SetupPaymentRoutes registers the Stripe webhook. It is authenticated by its signature, not a JWT.
func SetupPaymentRoutes(app *fiber.App, ctl *paymentController.Controller) {
	app.Post("/payment/webhook", ctl.Webhook)
}
