package middlewares

import (
	"context"
	"strings"

	t_token "videoboard/pkg/token"

	"github.com/gofiber/fiber/v2"
)

const (
	// HeaderBearerPrefix expected prefix of the Authorization header
	HeaderBearerPrefix = "Bearer "

	// LocalPrincipal c.Locals key carrying the resolved principal
	LocalPrincipal = "principal"
)

// Authorizer turns a bearer token into the user it references. Any failure
// rejects the request before handler logic runs.
type Authorizer interface {
	Authorize(ctx context.Context, bearer string) (*t_token.Principal, error)
}

// JWTMiddleware validates the Authorization header and stores the resolved
// principal in the request locals.
func JWTMiddleware(auth Authorizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := bearerFrom(c)
		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Missing token",
			})
		}

		principal, err := auth.Authorize(c.Context(), tokenStr)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid token",
			})
		}

		c.Locals(LocalPrincipal, principal)
		return c.Next()
	}
}

// PrincipalFrom fetches the principal the middleware stored, nil outside
// protected routes.
func PrincipalFrom(c *fiber.Ctx) *t_token.Principal {
	principal, ok := c.Locals(LocalPrincipal).(*t_token.Principal)
	if !ok {
		return nil
	}
	return principal
}

func bearerFrom(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, HeaderBearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(header, HeaderBearerPrefix)
}
