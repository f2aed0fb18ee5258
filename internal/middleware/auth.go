package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/farmrakshaa/backend/internal/services"
)

// UserIDKey is the locals key under which the authenticated user id is
// stored for downstream handlers.
const UserIDKey = "userID"

// RequireAuth resolves the bearer credential to a user id. The token cookie
// set at login is checked first; an Authorization header is accepted as a
// fallback for non-browser clients.
func RequireAuth(tokens *services.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies("token")
		if tokenString == "" {
			tokenString = strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
		}
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized"})
		}

		userID, err := tokens.Verify(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized"})
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// UserID returns the authenticated user id placed by RequireAuth, or an
// empty string when the request is unauthenticated.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}
