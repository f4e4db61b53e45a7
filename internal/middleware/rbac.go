package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/schedmate-api/internal/models"
	"github.com/noah-isme/schedmate-api/internal/utils"
)

// RequireRole admits only callers whose token role is one of roles. Legacy
// role names are folded into their canonical form on both sides.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		if canonical := models.ParseRole(string(role)); canonical.Valid() {
			allowed[canonical] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role := roleFromLocals(c)
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

func roleFromLocals(c *fiber.Ctx) models.Role {
	switch v := c.Locals("user_role").(type) {
	case nil:
		return ""
	case models.Role:
		return models.ParseRole(string(v))
	case string:
		return models.ParseRole(v)
	default:
		return models.ParseRole(fmt.Sprintf("%v", v))
	}
}
