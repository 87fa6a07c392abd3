package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ridemap/admin-server/internal/services"
)

// InstituteHandler serves the per-institute reference lists.
type InstituteHandler struct {
	institutes *services.InstituteService
}

func NewInstituteHandler(institutes *services.InstituteService) *InstituteHandler {
	return &InstituteHandler{institutes: institutes}
}

type listValueRequest struct {
	Value string `json:"value"`
}

func (h *InstituteHandler) Departments(c *fiber.Ctx) error {
	departments, err := h.institutes.Departments(c.Context(), institute(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"departments": departments})
}

func (h *InstituteHandler) AddDepartment(c *fiber.Ctx) error {
	var req listValueRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.institutes.AddDepartment(c.Context(), institute(c), strings.TrimSpace(req.Value)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Department added"})
}

func (h *InstituteHandler) DeleteDepartment(c *fiber.Ctx) error {
	if err := h.institutes.DeleteDepartment(c.Context(), institute(c), c.Params("name")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Department deleted"})
}

func (h *InstituteHandler) Busses(c *fiber.Ctx) error {
	busses, err := h.institutes.Busses(c.Context(), institute(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"busses": busses})
}

// AddBus uppercases the bus code the same way the entry form does.
func (h *InstituteHandler) AddBus(c *fiber.Ctx) error {
	var req listValueRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	busNo := strings.ToUpper(strings.TrimSpace(req.Value))
	if err := h.institutes.AddBus(c.Context(), institute(c), busNo); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Bus added"})
}

func (h *InstituteHandler) DeleteBus(c *fiber.Ctx) error {
	if err := h.institutes.DeleteBus(c.Context(), institute(c), c.Params("busNo")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Bus deleted"})
}
