package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/udata-api/internal/apperror"
	"github.com/noah-isme/udata-api/internal/models"
	"github.com/noah-isme/udata-api/internal/utils"
)

const userLocalsKey = "user"

// Gate resolves a bearer token into a live user.
type Gate interface {
	Resolve(ctx context.Context, token string) (models.User, error)
}

// Authenticate requires a bearer token that resolves to a live user and stores that user on the request.
func Authenticate(gate Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authorization == "" {
			return unauthorized(c, "authorization header missing")
		}

		const bearer = "bearer "
		if len(authorization) <= len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return unauthorized(c, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return unauthorized(c, "invalid token")
		}

		user, err := gate.Resolve(c.UserContext(), tokenString)
		if err != nil {
			status := apperror.HTTPStatus(err)
			return utils.SendError(c, status, apperror.PublicMessage(err))
		}

		c.Locals(userLocalsKey, user)
		c.Locals("user_id", user.ID.String())
		c.Locals("user_role", string(user.Role))

		return c.Next()
	}
}

// CurrentUser returns the user stored by Authenticate.
func CurrentUser(c *fiber.Ctx) (models.User, bool) {
	user, ok := c.Locals(userLocalsKey).(models.User)
	return user, ok
}

func unauthorized(c *fiber.Ctx, message string) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return utils.SendError(c, fiber.StatusUnauthorized, message)
}
