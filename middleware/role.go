package middleware

import (
	"learnhub/apperrors"

	"github.com/gofiber/fiber/v2"
)

// RequireRole admits only callers whose token carries one of roles.
// Course-level checks still happen in the handlers.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if !allowed[role] {
			return apperrors.NotAllowed("You do not have permission to access this resource!")
		}
		return c.Next()
	}
}
