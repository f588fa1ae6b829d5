package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/domain"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// El orden importa: un error puede envolver varios sentinels (ej. compensación fallida).
var errorMappings = []errorMapping{
	{domain.ErrInvalidRange, fiber.StatusBadRequest, "INVALID_RANGE"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrNoActiveSale, fiber.StatusNotFound, "NO_ACTIVE_SALE"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrEmptyCart, fiber.StatusConflict, "EMPTY_CART"},
	{domain.ErrDraftAlreadyActive, fiber.StatusConflict, "SALE_ALREADY_ACTIVE"},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrAllocationConflict, fiber.StatusServiceUnavailable, "ALLOCATION_CONFLICT"},
	{domain.ErrPersistence, fiber.StatusInternalServerError, "PERSISTENCE"},
}

// statusFor traduce un error de dominio a status HTTP y código.
func statusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// writeError responde con dto.ErrorResponse. Los 500 no exponen el detalle interno.
func writeError(c *fiber.Ctx, err error) error {
	status, code := statusFor(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "error interno, intente de nuevo"
		if code == "PERSISTENCE" {
			msg = domain.ErrPersistence.Error()
		}
	}
	if status == fiber.StatusServiceUnavailable {
		c.Set(fiber.HeaderRetryAfter, "1")
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}

// base da a los handlers el registro de fallos 5xx.
type base struct {
	log zerolog.Logger
}

func (b base) fail(c *fiber.Ctx, err error) error {
	if status, _ := statusFor(err); status >= fiber.StatusInternalServerError {
		b.log.Error().Err(err).Str("path", c.Path()).Str("user_id", GetUserID(c)).Msg("petición fallida")
	}
	return writeError(c, err)
}
