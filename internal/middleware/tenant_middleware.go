package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// RequireTenant ensures the institute path segment matches the institute
// claim of the session, so an admin can only reach their own tenant's data.
func RequireTenant(c *fiber.Ctx) error {
	claimed, _ := c.Locals(LocalInstitute).(string)
	if claimed == "" || c.Params("institute") != claimed {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
	}
	return c.Next()
}
