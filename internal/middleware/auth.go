package middleware

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// UserContext holds the authenticated user for the request
type UserContext struct {
	UserID string
	Email  string
	Role   string
}

// JWTSecret reads the signing secret from the environment
func JWTSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// RequireAuth validates a Bearer JWT and stores the user in locals
func RequireAuth(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{
				"error":   "missing_token",
				"message": "Authentication required. Use Authorization: Bearer YOUR_TOKEN",
			})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{
				"error":   "invalid_auth_format",
				"message": "Authorization header must be in format: Bearer YOUR_TOKEN",
			})
		}

		user, err := parseToken(strings.TrimSpace(parts[1]), secret)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{
				"error":   "invalid_token",
				"message": "The provided token is invalid or expired",
			})
		}

		c.Locals("user", user)
		return c.Next()
	}
}

// OptionalAuth is like RequireAuth but lets unauthenticated requests
// through without a user context
func OptionalAuth(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("Authorization") == "" {
			return c.Next()
		}
		return RequireAuth(secret)(c)
	}
}

// RequireRole checks the authenticated user's role
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(*UserContext)
		if !ok {
			return c.Status(401).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "Authentication required",
			})
		}

		if user.Role != role {
			return c.Status(403).JSON(fiber.Map{
				"error":         "insufficient_permissions",
				"message":       "Your account does not have the required role",
				"required_role": role,
			})
		}

		return c.Next()
	}
}

// UserFromLocals returns the authenticated user, if any
func UserFromLocals(c *fiber.Ctx) *UserContext {
	user, _ := c.Locals("user").(*UserContext)
	return user
}

func parseToken(tokenString string, secret []byte) (*UserContext, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, jwt.ErrTokenInvalidSubject
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return &UserContext{UserID: sub, Email: email, Role: role}, nil
}
