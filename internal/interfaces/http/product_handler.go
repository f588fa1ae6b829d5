package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/inventory"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

// ProductHandler consulta el catálogo y la disponibilidad por lotes (protegido).
type ProductHandler struct {
	base
	products repository.ProductRepository
	ledger   *inventory.LedgerService
}

// NewProductHandler construye el handler.
func NewProductHandler(products repository.ProductRepository, ledger *inventory.LedgerService, log *logger.Logger) *ProductHandler {
	return &ProductHandler{base: base{log: log.Component("http.products")}, products: products, ledger: ledger}
}

// Search godoc
// @Summary      Buscar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        q      query  string  false  "Nombre o SKU"
// @Param        limit  query  int     false  "Límite"  default(20)
// @Success      200    {array}  dto.ProductResponse
// @Router       /api/products [get]
func (h *ProductHandler) Search(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20)}
	page.DefaultPage()
	list, err := h.products.Search(c.Context(), c.Query("q"), page.Limit)
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.FromProduct(p))
	}
	return c.JSON(out)
}

// GetByID GET /api/products/:id
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	p, err := h.products.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if p == nil {
		return writeError(c, domain.ErrNotFound)
	}
	return c.JSON(dto.FromProduct(p))
}

// Availability godoc
// @Summary      Disponibilidad por lotes en la sucursal del token
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.AvailabilityResponse
// @Router       /api/products/{id}/availability [get]
func (h *ProductHandler) Availability(c *fiber.Ctx) error {
	branchID := GetBranchID(c)
	productID := c.Params("id")
	lots, err := h.ledger.Lots(c.Context(), branchID, productID)
	if err != nil {
		return h.fail(c, err)
	}
	total := 0
	for _, l := range lots {
		total += l.Quantity
	}
	return c.JSON(dto.AvailabilityResponse{
		ProductID: productID,
		BranchID:  branchID,
		Available: total,
		Lots:      dto.FromLots(lots),
	})
}
