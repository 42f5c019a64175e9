package server

import (
	"context"

	"cecilia/internal/middleware"
	"cecilia/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AuthRequired rejects requests without a valid, unrevoked session. The
// token comes from a Bearer header or the session cookie.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := middleware.SessionToken(c)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		user, claims, err := s.authService.Authenticate(c.UserContext(), token)
		if err != nil {
			return respondServiceError(c, err)
		}

		c.Locals("userID", user.ID)
		c.Locals("user", user)
		c.Locals("claims", claims)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, user.ID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// hasSession reports whether the request carries a valid session without
// enforcing one.
func (s *Server) hasSession(c *fiber.Ctx) bool {
	token, ok := middleware.SessionToken(c)
	if !ok {
		return false
	}
	_, _, err := s.authService.Authenticate(c.UserContext(), token)
	return err == nil
}

func sessionUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

func sessionClaims(c *fiber.Ctx) *jwt.RegisteredClaims {
	claims, _ := c.Locals("claims").(*jwt.RegisteredClaims)
	return claims
}
