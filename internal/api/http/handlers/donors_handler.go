package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bloodbank-service/internal/api/dto"
	"github.com/spec-kit/bloodbank-service/internal/service"
)

// DonorsHandler serves the donor's own profile.
type DonorsHandler struct {
	donors *service.DonorService
}

// NewDonorsHandler constructs handler.
func NewDonorsHandler(donorService *service.DonorService) *DonorsHandler {
	return &DonorsHandler{donors: donorService}
}

// Me GET /donors/me.
func (h *DonorsHandler) Me(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	profile, err := h.donors.GetByUser(c.UserContext(), principal.UserID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDonorProfileResponse(profile)})
}
