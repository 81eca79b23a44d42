package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bloodbank-service/internal/api/dto"
	"github.com/spec-kit/bloodbank-service/internal/service"
	"github.com/spec-kit/bloodbank-service/internal/validator"
	apperrors "github.com/spec-kit/bloodbank-service/pkg/util"
)

// AppointmentsHandler manages donation appointment endpoints.
type AppointmentsHandler struct {
	service   *service.AppointmentService
	validator *validator.Validator
}

// NewAppointmentsHandler constructs handler.
func NewAppointmentsHandler(appointmentService *service.AppointmentService, v *validator.Validator) *AppointmentsHandler {
	return &AppointmentsHandler{service: appointmentService, validator: v}
}

// Create POST /appointments.
func (h *AppointmentsHandler) Create(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateAppointmentRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return err
	}
	date, err := dto.ParseDate(req.Date)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), map[string]any{"date": "format"})
	}

	appt, err := h.service.Create(c.UserContext(), principal.UserID(), service.AppointmentCreateInput{
		Date:     date,
		Hospital: req.Hospital,
		Location: req.Location.ToDomain(),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAppointmentResponse(appt)})
}

// ListMine GET /appointments.
func (h *AppointmentsHandler) ListMine(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	appts, err := h.service.ListMine(c.UserContext(), principal.UserID())
	if err != nil {
		return err
	}
	items := make([]dto.AppointmentResponse, 0, len(appts))
	for i := range appts {
		items = append(items, dto.NewAppointmentResponse(&appts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListAll GET /appointments/all.
func (h *AppointmentsHandler) ListAll(c *fiber.Ctx) error {
	appts, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.AdminAppointmentResponse, 0, len(appts))
	for i := range appts {
		items = append(items, dto.NewAdminAppointmentResponse(&appts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Approve POST /appointments/approve/:id.
func (h *AppointmentsHandler) Approve(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "appointment")
	if err != nil {
		return err
	}
	appt, err := h.service.Approve(c.UserContext(), principal.UserID(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Appointment approved", Data: dto.NewAppointmentResponse(appt)})
}

// Reject POST /appointments/reject/:id.
func (h *AppointmentsHandler) Reject(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "appointment")
	if err != nil {
		return err
	}
	appt, err := h.service.Reject(c.UserContext(), principal.UserID(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Appointment rejected", Data: dto.NewAppointmentResponse(appt)})
}
