package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/openlot/dealership-backend/internal/models"
	"github.com/openlot/dealership-backend/internal/services"
)

// ClaimsKey is the fiber locals key holding the verified token claims.
const ClaimsKey = "claims"

// RequireAuth verifies the Bearer token and stores its claims in locals.
func RequireAuth(tokens *services.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing or malformed authorization header",
			})
		}

		claims, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

// RequireRole guards a route group for a single role. Must run after
// RequireAuth.
func RequireRole(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := TokenClaims(c)
		if claims == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}
		if claims.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Insufficient permissions",
			})
		}
		return c.Next()
	}
}

// TokenClaims returns the claims stored by RequireAuth, or nil.
func TokenClaims(c *fiber.Ctx) *services.Claims {
	claims, _ := c.Locals(ClaimsKey).(*services.Claims)
	return claims
}
