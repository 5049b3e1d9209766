package middleware

import (
	"log"
	"strings"

	"cardapio/internal/authz"
	"cardapio/internal/models"
	"cardapio/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthRequired.
const (
	LocalUserID = "user_id"
	LocalEmail  = "email"
	LocalRole   = "role"
)

// TokenValidator checks a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*services.Claims, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token in the
// Authorization header.
func AuthRequired(validator TokenValidator) fiber.Handler {
	return authenticate(validator, false)
}

// AuthRequiredQuery also accepts the token as the "token" query parameter.
// Browsers cannot set headers on a websocket handshake, so only the order feed uses it.
func AuthRequiredQuery(validator TokenValidator) fiber.Handler {
	return authenticate(validator, true)
}

func authenticate(validator TokenValidator, allowQuery bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var tokenString string
		if allowQuery {
			tokenString = c.Query("token")
		}
		if authHeader := c.Get("Authorization"); authHeader != "" {
			// Expected format: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if !(len(parts) == 2 && parts[0] == "Bearer") {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Authorization header format must be 'Bearer <token>'",
				})
			}
			tokenString = parts[1]
		}
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		claims, err := validator.ValidateToken(tokenString)
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		// Store claims in Fiber context for subsequent handlers
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalEmail, claims.Email)
		c.Locals(LocalRole, claims.Role)

		return c.Next()
	}
}

// Authorize rejects requests whose role has no policy for the route.
func Authorize(enforcer *authz.Enforcer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFrom(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}
		allowed, err := enforcer.Allowed(actor.Role, c.Path(), c.Method())
		if err != nil {
			log.Printf("Authorization check failed for %s %s: %v", c.Method(), c.Path(), err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Internal server error",
			})
		}
		if !allowed {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "You are not allowed to perform this action",
			})
		}
		return c.Next()
	}
}

// ActorFrom returns the caller stored by AuthRequired.
func ActorFrom(c *fiber.Ctx) (services.Actor, bool) {
	userID, _ := c.Locals(LocalUserID).(string)
	role, _ := c.Locals(LocalRole).(models.Role)
	if userID == "" || !role.Valid() {
		return services.Actor{}, false
	}
	return services.Actor{UserID: userID, Role: role}, true
}
