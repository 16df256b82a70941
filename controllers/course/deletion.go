package courseController

import (
	"fmt"
	"strings"

	"learnhub/apperrors"
	"learnhub/middleware"
	"learnhub/services/entitlement"
	"learnhub/validators"
	courseValidator "learnhub/validators/course"

	"github.com/gofiber/fiber/v2"
)

// RequestDeletion mails a deletion code for the :id resource of kind.
func (ctl *Controller) RequestDeletion(kind entitlement.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.UserID(c)
		if err != nil {
			return err
		}
		ref := entitlement.Ref{Kind: kind, ID: validators.LocalID(c, "id")}

		expiresAt, err := ctl.deletion.Request(c.UserContext(), userID, ref)
		if err != nil {
			return err
		}

		return middleware.JsonResponse(c, fiber.StatusOK, true, "Verification code sent to your email.", fiber.Map{
			"expires_at": expiresAt,
		})
	}
}

// ConfirmDeletion deletes the :id resource of kind once the emailed code checks out.
func (ctl *Controller) ConfirmDeletion(kind entitlement.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.UserID(c)
		if err != nil {
			return err
		}
		reqData, ok := c.Locals("validatedConfirmDelete").(*courseValidator.ConfirmDeleteRequest)
		if !ok {
			return apperrors.BadRequest("Invalid request data!")
		}
		ref := entitlement.Ref{Kind: kind, ID: validators.LocalID(c, "id")}

		if err := ctl.deletion.Confirm(c.UserContext(), userID, ref, reqData.Code); err != nil {
			return err
		}

		label := string(kind)
		message := fmt.Sprintf("%s deleted successfully!", strings.ToUpper(label[:1])+label[1:])
		return middleware.JsonResponse(c, fiber.StatusOK, true, message, nil)
	}
}
