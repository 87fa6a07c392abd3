package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ridemap/admin-server/internal/apiclient"
	"github.com/ridemap/admin-server/internal/services"
	"github.com/ridemap/admin-server/internal/store"
)

// respondError maps service and gateway failures onto HTTP statuses. Backend
// rejections keep their mapped user-facing message; everything unexpected
// collapses to a generic payload.
func respondError(c *fiber.Ctx, err error) error {
	var apiErr *apiclient.APIError
	switch {
	case errors.Is(err, services.ErrEmptyValue),
		errors.Is(err, services.ErrUnknownBus),
		errors.Is(err, services.ErrNotImage),
		errors.Is(err, services.ErrNoFiles),
		errors.Is(err, services.ErrMissingEnroll):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &apiErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": apiErr.Message, "code": apiErr.Code})
	case errors.Is(err, apiclient.ErrNetwork):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Network Error"})
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	default:
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Something went wrong, please try again"})
	}
}

func institute(c *fiber.Ctx) string {
	return c.Params("institute")
}
