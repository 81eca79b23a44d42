package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bloodbank-service/internal/api/dto"
	"github.com/spec-kit/bloodbank-service/internal/domain"
	"github.com/spec-kit/bloodbank-service/internal/service"
	"github.com/spec-kit/bloodbank-service/internal/validator"
)

// AuthHandler exposes registration and login.
type AuthHandler struct {
	auth      *service.AuthService
	validator *validator.Validator
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, v *validator.Validator) *AuthHandler {
	return &AuthHandler{auth: authService, validator: v}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return err
	}

	input := service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	}
	if input.Role == domain.RoleDonor {
		input.Donor = &service.DonorRegistration{
			BloodGroup:      domain.BloodGroup(req.BloodGroup),
			Age:             req.Age,
			Weight:          req.Weight,
			HemoglobinLevel: req.HemoglobinLevel,
			Diseases:        req.Diseases,
			Location:        req.Location.ToDomain(),
		}
	}

	user, profile, err := h.auth.Register(c.UserContext(), input)
	if err != nil {
		return err
	}

	data := fiber.Map{"user": dto.NewUserResponse(user)}
	if profile != nil {
		data["profile"] = dto.NewDonorProfileResponse(profile)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": data})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return err
	}

	res, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     res.Token,
		Role:      res.User.Role,
		Name:      res.User.Name,
		ExpiresAt: res.ExpiresAt,
	}})
}
