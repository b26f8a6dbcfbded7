package middleware

import (
	"github.com/earningbd/rewardhub/internal/rewardhub/types"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Authorizer re-checks a token against the live session, so tokens minted
// before a logout or role change stop working even though their signature
// still verifies.
type Authorizer interface {
	Authorize(role types.Role, sessionID string) error
}

func Protected(jwtSecret []byte) func(*fiber.Ctx) error {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{Key: jwtSecret},
		ErrorHandler: jwtError,
	})
}

// SessionGuard requires the token's role claim to equal role and its session
// id to match the current session epoch.
func SessionGuard(auth Authorizer, role types.Role) func(*fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok {
			return jwtError(c, nil)
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return jwtError(c, nil)
		}
		tokenRole, _ := claims["role"].(string)
		sessionID, _ := claims["sid"].(string)
		if types.Role(tokenRole) != role {
			c.Status(fiber.StatusForbidden)
			return c.JSON(fiber.Map{"status": "error", "message": "This area is not available for your role"})
		}
		if err := auth.Authorize(types.Role(tokenRole), sessionID); err != nil {
			return jwtError(c, err)
		}
		return c.Next()
	}
}

func jwtError(c *fiber.Ctx, _ error) error {

	c.Status(fiber.StatusUnauthorized)
	return c.JSON(fiber.Map{"status": "error", "message": "Authorization required"})

}
