package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ridemap/admin-server/internal/services"
)

// OccupancyHandler serves the dashboard's per-bus occupancy report.
type OccupancyHandler struct {
	occupancy *services.OccupancyService
}

func NewOccupancyHandler(occupancy *services.OccupancyService) *OccupancyHandler {
	return &OccupancyHandler{occupancy: occupancy}
}

func (h *OccupancyHandler) Report(c *fiber.Ctx) error {
	report, err := h.occupancy.Report(c.Context(), institute(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}
