package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"domain_error_passthrough", NewAlreadyProcessed("appointment", nil), CodeAlreadyProcessed, http.StatusBadRequest},
		{"wrapped_domain_error", fmt.Errorf("approve: %w", NewInsufficientStock(nil)), CodeInsufficientStock, http.StatusBadRequest},
		{"no_rows", pgx.ErrNoRows, CodeNotFound, http.StatusNotFound},
		{"fiber_forbidden", fiber.NewError(http.StatusForbidden, "nope"), CodeForbidden, http.StatusForbidden},
		{"unknown", errors.New("boom"), CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			require.NotNil(t, de)
			assert.Equal(t, tt.code, de.Code)
			assert.Equal(t, tt.status, de.HTTPStatus)
		})
	}
	assert.Nil(t, ToDomainError(nil))
}

func TestInternalErrorHidesCause(t *testing.T) {
	de := ToDomainError(errors.New("connection reset"))
	assert.Equal(t, "internal server error", de.Message)
	assert.ErrorContains(t, de, "connection reset")
}

func TestNotEligibleCarriesReason(t *testing.T) {
	de := ToDomainError(NewNotEligible("Weight must be at least 50 kg"))
	assert.Equal(t, "Weight must be at least 50 kg", de.Details["reason"])
	assert.True(t, HasCode(de, CodeNotEligible))
}
