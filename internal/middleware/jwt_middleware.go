package middleware

import (
	"log"
	"strings"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// bearerToken extracts the token from an Authorization header, or ""
// when the header is absent or malformed.
func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func setClaims(c *fiber.Ctx, authService *services.AuthService, token string) error {
	claims, err := authService.ValidateToken(token)
	if err != nil {
		return err
	}
	c.Locals("user_id", claims["user_id"])
	c.Locals("email", claims["email"])
	c.Locals("role", claims["role"])
	return nil
}

// AuthRequired is a Fiber middleware that rejects requests without a
// valid JWT token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}
		if err := setClaims(c, authService, token); err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}
		return c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and
// lets the request through either way. Cart and checkout run under this
// so guests keep working.
func OptionalAuth(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if err := setClaims(c, authService, token); err != nil {
				log.Printf("Ignoring invalid token on optional-auth route: %v", err)
			}
		}
		return c.Next()
	}
}

// AdminRequired gates admin routes; it assumes AuthRequired ran first.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals("role").(string); role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin access required",
			})
		}
		return c.Next()
	}
}

// UserID returns the authenticated user's ID from the request context,
// or nil for anonymous requests.
func UserID(c *fiber.Ctx) *string {
	if id, ok := c.Locals("user_id").(string); ok && id != "" {
		return &id
	}
	return nil
}
