package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ridemap/admin-server/internal/apiclient"
	"github.com/ridemap/admin-server/internal/middleware"
	"github.com/ridemap/admin-server/internal/services"
)

// AdminHandler lists institute admins and proxies account provisioning to
// the backend API.
type AdminHandler struct {
	institutes *services.InstituteService
	backend    *apiclient.Client
}

func NewAdminHandler(institutes *services.InstituteService, backend *apiclient.Client) *AdminHandler {
	return &AdminHandler{institutes: institutes, backend: backend}
}

// List returns the institute's admins, soft-deleted records excluded.
func (h *AdminHandler) List(c *fiber.Ctx) error {
	admins, err := h.institutes.Admins(c.Context(), institute(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"admins": admins})
}

func (h *AdminHandler) Create(c *fiber.Ctx) error {
	var req apiclient.CreateAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name, email and password are required"})
	}
	req.Institute = institute(c)

	token, _ := c.Locals(middleware.LocalToken).(string)
	if err := h.backend.CreateAdmin(c.Context(), token, req); err != nil {
		return respondError(c, err)
	}

	h.institutes.InvalidateRecords(institute(c))
	return c.JSON(fiber.Map{"message": "Admin created"})
}

// Delete is the explicit hard-delete admin action.
func (h *AdminHandler) Delete(c *fiber.Ctx) error {
	token, _ := c.Locals(middleware.LocalToken).(string)
	if err := h.backend.DeleteAdmin(c.Context(), token, c.Params("uid")); err != nil {
		return respondError(c, err)
	}

	h.institutes.InvalidateRecords(institute(c))
	return c.JSON(fiber.Map{"message": "Admin deleted"})
}
