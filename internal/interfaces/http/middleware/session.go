package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const sessionCookie = "pc_session"

// Session guarantees every public request carries a session id. Existing
// cookies pass through untouched; first-time visitors get a fresh UUID. The
// id ends up in c.Locals("session_id") either way.
func Session() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(sessionCookie)
		if sessionID == "" {
			sessionID = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     sessionCookie,
				Value:    sessionID,
				Expires:  time.Now().Add(30 * time.Minute),
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}

		c.Locals("session_id", sessionID)
		return c.Next()
	}
}
