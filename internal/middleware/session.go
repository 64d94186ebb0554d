package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/coinfold/coinfold/internal/session"
)

const (
	sessionTokenHeader = "X-Session-Token"

	// SessionLocal is the fiber locals key holding the resolved *ledger.Session.
	SessionLocal = "session"
	// SessionTokenLocal is the fiber locals key holding the raw bearer token.
	SessionTokenLocal = "session_token"
)

// SessionAuth resolves the bearer token from the X-Session-Token header and
// stores the live session in the request locals. Requests without a valid
// token are rejected with 401.
func SessionAuth(manager *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(sessionTokenHeader)
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing session token")
		}

		s, err := manager.Get(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired session token")
		}

		c.Locals(SessionLocal, s)
		c.Locals(SessionTokenLocal, token)
		return c.Next()
	}
}
