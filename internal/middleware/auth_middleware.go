package middleware

import (
	"encoding/base64"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"catalogue/internal/services"
)

// AuthRequired is a Fiber middleware guarding write endpoints. It accepts
// either the Basic credential the catalogue client derives at login
// (base64 of username:password) or a Bearer token issued by the login
// endpoint. The authenticated username is stored in the request context.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Basic <credential>' or 'Bearer <token>'",
			})
		}

		switch parts[0] {
		case "Basic":
			decoded, err := base64.StdEncoding.DecodeString(parts[1])
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Invalid Basic credential encoding",
				})
			}
			username, password, ok := strings.Cut(string(decoded), ":")
			if !ok {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Invalid Basic credential format",
				})
			}
			user, err := authService.VerifyCredentials(c.Context(), username, password)
			if err != nil {
				log.Printf("Basic credential validation failed for user %s: %v", username, err)
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Invalid credentials",
				})
			}
			c.Locals("user_id", user.ID.Hex())
			c.Locals("username", user.Username)

		case "Bearer":
			claims, err := authService.ValidateToken(parts[1])
			if err != nil {
				log.Printf("JWT validation failed: %v", err)
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Invalid or expired token",
				})
			}
			c.Locals("user_id", claims["user_id"])
			c.Locals("username", claims["username"])

		default:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unsupported authorization scheme",
			})
		}

		return c.Next()
	}
}
