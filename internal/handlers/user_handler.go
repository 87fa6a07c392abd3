package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ridemap/admin-server/internal/apiclient"
	"github.com/ridemap/admin-server/internal/middleware"
	"github.com/ridemap/admin-server/internal/models"
	"github.com/ridemap/admin-server/internal/services"
)

// UserHandler serves rider records and proxies rider provisioning to the
// backend API.
type UserHandler struct {
	institutes *services.InstituteService
	backend    *apiclient.Client

	now func() time.Time
}

func NewUserHandler(institutes *services.InstituteService, backend *apiclient.Client) *UserHandler {
	return &UserHandler{institutes: institutes, backend: backend, now: time.Now}
}

// List returns the institute's riders, optionally filtered to one bus.
func (h *UserHandler) List(c *fiber.Ctx) error {
	var (
		users []models.UserRecord
		err   error
	)
	if busNo := c.Query("busNo"); busNo != "" {
		users, err = h.institutes.UsersByBus(c.Context(), institute(c), busNo)
	} else {
		users, err = h.institutes.Users(c.Context(), institute(c))
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// Search finds one rider by enrollment number. The input is uppercased and
// trimmed the same way the entry form normalizes it.
func (h *UserHandler) Search(c *fiber.Ctx) error {
	enrollNo := strings.ToUpper(strings.TrimSpace(c.Query("enrollNo")))
	user, err := h.institutes.SearchUser(c.Context(), institute(c), enrollNo)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// validate checks a rider payload against the institute's reference lists
// before any backend call. Field errors are collected per field so forms can
// surface them inline.
func (h *UserHandler) validate(ctx context.Context, inst string, user *apiclient.UserPayload) (map[string]string, error) {
	fieldErrs := map[string]string{}

	user.EnrollNo = strings.ToUpper(strings.TrimSpace(user.EnrollNo))
	if user.EnrollNo == "" {
		fieldErrs["enrollNo"] = "Enrollment number is required"
	}
	if user.Name == "" {
		fieldErrs["name"] = "Name is required"
	}
	if user.EmailOrPhone == "" {
		fieldErrs["emailOrPhone"] = "Email or phone is required"
	}
	if user.Gender != models.GenderMale && user.Gender != models.GenderFemale {
		fieldErrs["gender"] = "Gender must be Male or Female"
	}

	departments, err := h.institutes.Departments(ctx, inst)
	if err != nil {
		return nil, err
	}
	if !contains(departments, user.Department) {
		fieldErrs["department"] = "Unknown department"
	}

	// busNo may stay empty while a rider is between assignments.
	if user.BusNo != "" {
		busses, err := h.institutes.Busses(ctx, inst)
		if err != nil {
			return nil, err
		}
		if !contains(busses, user.BusNo) {
			fieldErrs["busNo"] = "Unknown bus number"
		}
	}

	// Month/year granularity; an expired pass cannot be issued or extended
	// into the past.
	if validUpto, err := time.Parse("2006-01", user.ValidUpto); err != nil {
		fieldErrs["validUpto"] = "Valid-upto must be formatted as YYYY-MM"
	} else {
		nowMonth := time.Date(h.now().Year(), h.now().Month(), 1, 0, 0, 0, 0, time.UTC)
		if validUpto.Before(nowMonth) {
			fieldErrs["validUpto"] = "Valid-upto must not be in the past"
		}
	}

	return fieldErrs, nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	var user apiclient.UserPayload
	if err := c.BodyParser(&user); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	fieldErrs, err := h.validate(c.Context(), institute(c), &user)
	if err != nil {
		return respondError(c, err)
	}
	if len(fieldErrs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fieldErrs})
	}

	token, _ := c.Locals(middleware.LocalToken).(string)
	if err := h.backend.CreateUser(c.Context(), token, user); err != nil {
		return respondError(c, err)
	}

	h.institutes.InvalidateRecords(institute(c))
	return c.JSON(fiber.Map{"message": "User created"})
}

// Update edits a rider. The login identifier is immutable, so any
// emailOrPhone in the payload must match the stored one backend-side; this
// handler only revalidates the editable fields.
func (h *UserHandler) Update(c *fiber.Ctx) error {
	var user apiclient.UserPayload
	if err := c.BodyParser(&user); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	fieldErrs, err := h.validate(c.Context(), institute(c), &user)
	if err != nil {
		return respondError(c, err)
	}
	if len(fieldErrs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fieldErrs})
	}

	token, _ := c.Locals(middleware.LocalToken).(string)
	if err := h.backend.UpdateUser(c.Context(), token, c.Params("uid"), user); err != nil {
		return respondError(c, err)
	}

	h.institutes.InvalidateRecords(institute(c))
	return c.JSON(fiber.Map{"message": "User updated"})
}

type reassignRequest struct {
	BusNo string `json:"busNo"`
}

// ReassignBus moves a rider to another bus and invalidates the users and
// occupancy snapshots.
func (h *UserHandler) ReassignBus(c *fiber.Ctx) error {
	var req reassignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.institutes.ReassignBus(c.Context(), institute(c), c.Params("uid"), req.BusNo); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Bus number updated"})
}
