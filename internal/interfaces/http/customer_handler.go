package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-pos/internal/application/billing"
	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

// CustomerHandler maneja las peticiones HTTP de clientes (protegido).
type CustomerHandler struct {
	base
	uc *billing.CustomerUseCase
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(uc *billing.CustomerUseCase, log *logger.Logger) *CustomerHandler {
	return &CustomerHandler{base: base{log: log.Component("http.customers")}, uc: uc}
}

// Create POST /api/customers
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	customer, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromCustomer(customer))
}

// GetByExternalKey GET /api/customers/:key
func (h *CustomerHandler) GetByExternalKey(c *fiber.Ctx) error {
	customer, err := h.uc.FindByExternalKey(c.Context(), c.Params("key"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.FromCustomer(customer))
}
