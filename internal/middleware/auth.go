package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/AshhadS/gymapp/internal/models"
	"github.com/AshhadS/gymapp/pkg/utils"
)

// TokenHeader carries the opaque credential on every protected request.
const TokenHeader = "x-auth-token"

// AuthRequired validates the credential and attaches the principal to the
// request. Missing, malformed and expired tokens all map to the same 401
// so the caller learns nothing about why verification failed.
func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(c.Get(TokenHeader))
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"errors": []fiber.Map{{"msg": "No token, authorization denied"}},
			})
		}

		claims, err := utils.ValidateToken(token, secret)
		if err != nil || !models.ValidRole(claims.Role) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"errors": []fiber.Map{{"msg": "Token is not valid"}},
			})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("username", claims.Username)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}
