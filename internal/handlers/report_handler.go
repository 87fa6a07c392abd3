package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ridemap/admin-server/internal/middleware"
	"github.com/ridemap/admin-server/internal/services"
)

// ReportHandler serves the reported-rider workflow.
type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// List returns the institute's reported users, newest first.
func (h *ReportHandler) List(c *fiber.Ctx) error {
	reports, err := h.reports.ReportedUsers(c.Context(), institute(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"reports": reports})
}

// Images resolves a report's photo evidence to download URLs. A missing
// enrollment number resolves to null, matching the nothing-to-show case.
func (h *ReportHandler) Images(c *fiber.Ctx) error {
	images, err := h.reports.Images(c.Context(), institute(c), c.Params("enrollNo"))
	if err != nil {
		return respondError(c, err)
	}
	if images == nil {
		return c.JSON(nil)
	}
	return c.JSON(images)
}

// Upload ingests a multipart image batch for an enrollment number. The
// optional batchId form field keys live progress polling.
func (h *ReportHandler) Upload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid multipart form"})
	}

	enrollNo := strings.ToUpper(strings.TrimSpace(c.FormValue("enrollNo")))
	batchID := c.FormValue("batchId")
	uploadedBy, _ := c.Locals(middleware.LocalUID).(string)

	batchID, err = h.reports.Ingest(c.Context(), institute(c), uploadedBy, enrollNo, batchID, form.File["images"])
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Uploaded successfully",
		"batchId": batchID,
	})
}

// Progress reports an upload batch's status.
func (h *ReportHandler) Progress(c *fiber.Ctx) error {
	status, ok := h.reports.Progress(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown batch"})
	}
	return c.JSON(status)
}
