package middleware

import (
	"strings"

	"favshop/internal/apperrors"
	"favshop/internal/models"
	"favshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

const userLocalKey = "user"

// AuthRequired resolves the token in the Authorization header to a user and
// stores it in the request locals for subsequent handlers.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := authService.FindUserByToken(tokenFromHeader(c))
		if err != nil {
			return err
		}

		c.Locals(userLocalKey, user)
		return c.Next()
	}
}

// OwnerRequired rejects requests whose named path parameter does not match
// the authenticated user's id.
func OwnerRequired(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return err
		}
		if user.ID != c.Params(param) {
			return apperrors.Auth("Unauthorized access")
		}
		return c.Next()
	}
}

// CurrentUser returns the user stashed by AuthRequired.
func CurrentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals(userLocalKey).(*models.User)
	if !ok {
		return nil, apperrors.Auth("Authorization token required")
	}
	return user, nil
}

// tokenFromHeader extracts the token from the Authorization header. Clients
// send either the bare token or the "Bearer <token>" form.
func tokenFromHeader(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return authHeader
}
