package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ridemap/admin-server/internal/services"
)

// SessionHandler exposes session establishment.
type SessionHandler struct {
	sessions *services.SessionService
}

func NewSessionHandler(sessions *services.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Establish mirrors the bearer token into a normalized session. A token
// without the admin claim is rejected with the same generic 401 as a bad
// token; nothing hints at the claim check.
func (h *SessionHandler) Establish(c *fiber.Ctx) error {
	tokenString := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
	if tokenString == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token"})
	}

	session, profile, err := h.sessions.Establish(c.Context(), tokenString)
	if err != nil {
		if errors.Is(err, services.ErrNotAdmin) || errors.Is(err, services.ErrBadToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"session": session,
		"admin":   profile,
	})
}
