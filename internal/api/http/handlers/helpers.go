package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/bloodbank-service/internal/auth"
	"github.com/spec-kit/bloodbank-service/internal/validator"
	apperrors "github.com/spec-kit/bloodbank-service/pkg/util"
)

// parseBody decodes the JSON body into dst and runs struct validation.
func parseBody(c *fiber.Ctx, v *validator.Validator, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"body": err.Error()})
	}
	return v.Validate(dst)
}

func principalFrom(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

// pathID returns the named path parameter. Ids that cannot exist are reported as not found.
func pathID(c *fiber.Ctx, param, resource string) (string, error) {
	id := c.Params(param)
	if err := uuid.Validate(id); err != nil {
		return "", apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return id, nil
}
