package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/schedmate-api/internal/models"
	"github.com/noah-isme/schedmate-api/internal/utils"
)

// AuthOptions configures WithAuth. A blank Role admits any authenticated
// caller when RequireUser is set, and everyone otherwise.
type AuthOptions struct {
	Role        models.Role
	RequireUser bool
}

// WithAuth guards a single handler, for routes whose siblings in the same
// group have a looser policy.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := models.ParseRole(string(opts.Role))
	requireUser := opts.RequireUser || role != ""

	return func(c *fiber.Ctx) error {
		if requireUser {
			if id, ok := c.Locals("user_id").(uint); !ok || id == 0 {
				return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
			}
		}
		if role != "" && roleFromLocals(c) != role {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return handler(c)
	}
}
