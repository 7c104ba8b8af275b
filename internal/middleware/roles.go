package middleware

import "github.com/gofiber/fiber/v2"

// RoleAllowed is the whole authorization policy: a principal may use a
// route iff its role equals the route's required role.
func RoleAllowed(role, requiredRole string) bool {
	return role != "" && role == requiredRole
}

// RequireRole rejects authenticated principals whose role does not match.
// It must run after AuthRequired, which populates the role local.
func RequireRole(requiredRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok || !RoleAllowed(role, requiredRole) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"errors": []fiber.Map{{"msg": "Access denied. Only " + requiredRole + "s can access this resource."}},
			})
		}
		return c.Next()
	}
}
