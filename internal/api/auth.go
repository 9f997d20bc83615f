package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SyncAuth returns Fiber middleware that requires "Authorization: Bearer
// <token>" on every /api/v1/sync/* request when token is non-empty. An
// empty token disables the check entirely, matching the teacher's
// conditional-registration style for optional dependencies.
func SyncAuth(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token == "" {
			return c.Next()
		}
		if !strings.HasPrefix(c.Path(), "/api/v1/sync") {
			return c.Next()
		}

		header := c.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) || header[len(prefix):] != token {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or invalid bearer token",
			})
		}
		return c.Next()
	}
}
