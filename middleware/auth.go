package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"expense-tracker-go-be/auth"
)

// UserIDKey is the locals key under which the authenticated user id is stored.
const UserIDKey = "userID"

// RequestGate authenticates every request passing through it. It extracts the
// bearer token from the Authorization header, validates it, and stores the
// subject user id in the request locals. Runs before any domain logic.
func RequestGate(tokens *auth.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized: No token provided",
			})
		}

		claims, err := tokens.Validate(strings.TrimSpace(header[7:]))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized: Invalid or expired token",
			})
		}

		c.Locals(UserIDKey, claims.UserID())
		return c.Next()
	}
}

// UserID returns the authenticated caller id set by RequestGate.
func UserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals(UserIDKey).(uint); ok {
		return id
	}
	return 0
}
