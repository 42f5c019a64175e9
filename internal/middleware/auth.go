package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the cookie carrying the admin session token.
const SessionCookie = "session"

// SessionToken extracts the session token from a "Bearer <token>"
// Authorization header, falling back to the session cookie.
func SessionToken(c *fiber.Ctx) (string, bool) {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}

	if token := c.Cookies(SessionCookie); token != "" {
		return token, true
	}
	return "", false
}
