package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/udata-api/internal/models"
	"github.com/noah-isme/udata-api/internal/utils"
)

// RequireRole ensures that the authenticated user holds one of the allowed roles.
// It must run after Authenticate.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		if _, ok := allowed[user.Role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}
