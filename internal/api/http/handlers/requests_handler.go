package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bloodbank-service/internal/api/dto"
	"github.com/spec-kit/bloodbank-service/internal/domain"
	"github.com/spec-kit/bloodbank-service/internal/service"
	"github.com/spec-kit/bloodbank-service/internal/validator"
)

// RequestsHandler manages blood request endpoints.
type RequestsHandler struct {
	service   *service.RequestService
	validator *validator.Validator
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requestService *service.RequestService, v *validator.Validator) *RequestsHandler {
	return &RequestsHandler{service: requestService, validator: v}
}

// Create POST /requests.
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateBloodRequestRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return err
	}

	created, err := h.service.Create(c.UserContext(), principal.UserID(), service.RequestCreateInput{
		BloodGroup: domain.BloodGroup(req.BloodGroup),
		Units:      req.Units,
		Urgency:    domain.Urgency(req.Urgency),
		Location:   req.Location.ToDomain(),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewBloodRequestResponse(created)})
}

// ListMine GET /requests/mine.
func (h *RequestsHandler) ListMine(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	reqs, err := h.service.ListMine(c.UserContext(), principal.UserID())
	if err != nil {
		return err
	}
	items := make([]dto.BloodRequestResponse, 0, len(reqs))
	for i := range reqs {
		items = append(items, dto.NewBloodRequestResponse(&reqs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListAll GET /requests.
func (h *RequestsHandler) ListAll(c *fiber.Ctx) error {
	reqs, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.AdminBloodRequestResponse, 0, len(reqs))
	for i := range reqs {
		items = append(items, dto.NewAdminBloodRequestResponse(&reqs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Stats GET /requests/admin/stats.
func (h *RequestsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StatsResponse{
		Donors:  stats.Donors,
		Units:   stats.Units,
		Pending: stats.Pending,
	}})
}

// Approve POST /inventory/approve/:requestId.
func (h *RequestsHandler) Approve(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "requestId", "blood request")
	if err != nil {
		return err
	}
	approved, err := h.service.Approve(c.UserContext(), principal.UserID(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Request approved", Data: dto.NewBloodRequestResponse(approved)})
}

// Reject POST /inventory/reject/:requestId.
func (h *RequestsHandler) Reject(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "requestId", "blood request")
	if err != nil {
		return err
	}
	rejected, err := h.service.Reject(c.UserContext(), principal.UserID(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Request rejected", Data: dto.NewBloodRequestResponse(rejected)})
}
