package handlers

import (
	"slices"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bloodbank-service/internal/api/dto"
	"github.com/spec-kit/bloodbank-service/internal/domain"
	"github.com/spec-kit/bloodbank-service/internal/service"
	"github.com/spec-kit/bloodbank-service/internal/validator"
)

// InventoryHandler exposes stock levels and manual adjustments.
type InventoryHandler struct {
	service   *service.InventoryService
	validator *validator.Validator
}

// NewInventoryHandler constructs handler.
func NewInventoryHandler(inventoryService *service.InventoryService, v *validator.Validator) *InventoryHandler {
	return &InventoryHandler{service: inventoryService, validator: v}
}

// Update POST /inventory/update.
func (h *InventoryHandler) Update(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.InventoryUpdateRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return err
	}
	rec, err := h.service.Adjust(c.UserContext(), principal.UserID(), domain.BloodGroup(req.BloodGroup), req.Units)
	if err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Inventory updated", Data: rec})
}

// List GET /inventory/get and GET /inventory/public.
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	seq, err := h.service.All(c.UserContext())
	if err != nil {
		return err
	}
	records := slices.Collect(seq)
	if records == nil {
		records = []domain.InventoryRecord{}
	}
	return c.JSON(fiber.Map{"data": records})
}
