package validator

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/bloodbank-service/internal/domain"
	apperrors "github.com/spec-kit/bloodbank-service/pkg/util"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()

	// Custom validators
	_ = v.RegisterValidation("bloodgroup", validateBloodGroup)
	_ = v.RegisterValidation("urgency", validateUrgency)
	_ = v.RegisterValidation("role", validateRole)

	return &Validator{validate: v}
}

// Validate checks struct tags and reports failures as a VALIDATION_FAILED error
// whose details map each field to the rule it broke.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[lowerFirst(fe.Field())] = fe.Tag()
	}
	return apperrors.NewValidationError("validation failed", details)
}

func validateBloodGroup(fl validator.FieldLevel) bool {
	return domain.BloodGroup(fl.Field().String()).Valid()
}

func validateUrgency(fl validator.FieldLevel) bool {
	u := fl.Field().String()
	return u == "" || domain.Urgency(u).Valid()
}

func validateRole(fl validator.FieldLevel) bool {
	return domain.Role(fl.Field().String()).Valid()
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
