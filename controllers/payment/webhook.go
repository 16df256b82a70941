package paymentController

import (
	"learnhub/apperrors"
	"learnhub/logger"
	"learnhub/middleware"
	"learnhub/services/payment"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v76/webhook"
)

type Controller struct {
	dispatcher *payment.Dispatcher
	secret     string
	log        *logger.Logger
}

func New(dispatcher *payment.Dispatcher, webhookSecret string, log *logger.Logger) *Controller {
	return &Controller{dispatcher: dispatcher, secret: webhookSecret, log: log.With("controller", "payment")}
}

// Webhook verifies the Stripe signature and hands the event to the dispatcher.
func (ctl *Controller) Webhook(c *fiber.Ctx) error {
	sig := c.Get("Stripe-Signature")
	if sig == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Missing Stripe signature", nil)
	}

	event, err := webhook.ConstructEventWithOptions(c.Body(), sig, ctl.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		ctl.log.Warn("rejected stripe webhook", "error", err)
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Webhook Error: "+err.Error(), nil)
	}

	if err := ctl.dispatcher.Dispatch(c.UserContext(), event); err != nil {
		return apperrors.Internal("Failed to process webhook!", err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Webhook received.", nil)
}
