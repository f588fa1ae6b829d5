package http

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/farmacia-pos/internal/domain"
)

func TestStatusFor_MapeoDeErrores(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
		{domain.ErrInvalidRange, fiber.StatusBadRequest, "INVALID_RANGE"},
		{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
		{domain.ErrNoActiveSale, fiber.StatusNotFound, "NO_ACTIVE_SALE"},
		{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
		{domain.NewInsufficientStock("P", 3, 1), fiber.StatusConflict, "INSUFFICIENT_STOCK"},
		{domain.ErrEmptyCart, fiber.StatusConflict, "EMPTY_CART"},
		{domain.ErrDraftAlreadyActive, fiber.StatusConflict, "SALE_ALREADY_ACTIVE"},
		{fmt.Errorf("x: %w", domain.ErrInvalidTransition), fiber.StatusConflict, "INVALID_TRANSITION"},
		{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
		{domain.ErrAllocationConflict, fiber.StatusServiceUnavailable, "ALLOCATION_CONFLICT"},
		{fmt.Errorf("%w: timeout", domain.ErrPersistence), fiber.StatusInternalServerError, "PERSISTENCE"},
		{errors.New("boom"), fiber.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		status, code := statusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

// Una compensación fallida une el error original con el de reintegro; gana el original.
func TestStatusFor_ErrorCompuestoUsaPrimeraCoincidencia(t *testing.T) {
	err := errors.Join(domain.NewInsufficientStock("P", 3, 1), errors.New("reintegro fallido"))
	status, code := statusFor(err)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", code)
}
