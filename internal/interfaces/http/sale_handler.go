package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-pos/internal/application/billing"
	"github.com/jhoicas/farmacia-pos/internal/application/cart"
	"github.com/jhoicas/farmacia-pos/internal/application/checkout"
	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

// SaleHandler expone el borrador del cajero y el cobro (protegido).
type SaleHandler struct {
	base
	drafts *cart.DraftService
	engine *checkout.Engine
	pdf    *billing.PDFUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(drafts *cart.DraftService, engine *checkout.Engine, pdf *billing.PDFUseCase, log *logger.Logger) *SaleHandler {
	return &SaleHandler{base: base{log: log.Component("http.sales")}, drafts: drafts, engine: engine, pdf: pdf}
}

// StartDraft godoc
// @Summary      Abrir venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Success      201  {object}  dto.DraftSaleResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/draft [post]
func (h *SaleHandler) StartDraft(c *fiber.Ctx) error {
	staffID, branchID := GetUserID(c), GetBranchID(c)
	if staffID == "" || branchID == "" {
		return unauthorized(c)
	}
	d, err := h.drafts.Start(c.Context(), staffID, branchID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromDraft(d))
}

// GetDraft GET /api/sales/draft
func (h *SaleHandler) GetDraft(c *fiber.Ctx) error {
	d, err := h.drafts.Get(c.Context(), GetUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.FromDraft(d))
}

// CancelDraft DELETE /api/sales/draft
func (h *SaleHandler) CancelDraft(c *fiber.Ctx) error {
	if err := h.drafts.Cancel(c.Context(), GetUserID(c)); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddItem godoc
// @Summary      Agregar producto a la venta
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AddItemRequest  true  "Producto y cantidad"
// @Success      200   {object}  dto.DraftSaleResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/draft/items [post]
func (h *SaleHandler) AddItem(c *fiber.Ctx) error {
	var in dto.AddItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	d, err := h.drafts.AddItem(c.Context(), GetUserID(c), in.ProductID, in.Quantity)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.FromDraft(d))
}

// SetQuantity PUT /api/sales/draft/items/:productId
func (h *SaleHandler) SetQuantity(c *fiber.Ctx) error {
	var in dto.SetQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	d, err := h.drafts.SetQuantity(c.Context(), GetUserID(c), c.Params("productId"), in.Quantity)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.FromDraft(d))
}

// RemoveItem DELETE /api/sales/draft/items/:productId
func (h *SaleHandler) RemoveItem(c *fiber.Ctx) error {
	d, err := h.drafts.RemoveItem(c.Context(), GetUserID(c), c.Params("productId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.FromDraft(d))
}

// ProceedToCheckout POST /api/sales/draft/checkout
func (h *SaleHandler) ProceedToCheckout(c *fiber.Ctx) error {
	d, err := h.drafts.ProceedToCheckout(c.Context(), GetUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.FromDraft(d))
}

// Reopen POST /api/sales/draft/reopen
func (h *SaleHandler) Reopen(c *fiber.Ctx) error {
	d, err := h.drafts.Reopen(c.Context(), GetUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.FromDraft(d))
}

// Complete godoc
// @Summary      Cobrar la venta
// @Description  Asigna lotes FEFO, guarda la venta y emite la factura. Si la factura falla la venta sigue confirmada.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CompleteSaleRequest  true  "Cliente y medio de pago"
// @Success      201   {object}  dto.CompleteSaleResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/sales/complete [post]
func (h *SaleHandler) Complete(c *fiber.Ctx) error {
	var in dto.CompleteSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.engine.CompleteSale(c.Context(), GetUserID(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	out := dto.CompleteSaleResponse{Sale: dto.FromSale(res.Sale), Invoice: dto.FromInvoice(res.Invoice)}
	if res.InvoiceError != nil && out.Invoice != nil {
		out.Invoice.Error = "no se pudo emitir la factura; reintente desde la venta"
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetSale GET /api/sales/:id
func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	sale, err := h.engine.GetSale(c.Context(), c.Params("id"), GetBranchID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.FromSale(sale))
}

// CancelSale POST /api/sales/:id/cancel (regente o admin)
func (h *SaleHandler) CancelSale(c *fiber.Ctx) error {
	var in dto.CancelSaleRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	sale, err := h.engine.CancelSale(c.Context(), c.Params("id"), GetBranchID(c), GetUserID(c), in.Reason)
	if err != nil {
		if sale != nil && sale.Status == entity.SaleStatusCancelled {
			// anulada, pero algún lote no se reintegró
			h.log.Error().Err(err).Str("sale_id", sale.ID).Msg("anulación con reintegro incompleto")
			return c.Status(fiber.StatusAccepted).JSON(dto.FromSale(sale))
		}
		return h.fail(c, err)
	}
	return c.JSON(dto.FromSale(sale))
}

// IssueInvoice POST /api/sales/:id/invoice
func (h *SaleHandler) IssueInvoice(c *fiber.Ctx) error {
	inv, err := h.engine.IssueInvoice(c.Context(), c.Params("id"), GetBranchID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromInvoice(inv))
}

// InvoicePDF godoc
// @Summary      Descargar factura en PDF
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/invoice/pdf [get]
func (h *SaleHandler) InvoicePDF(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.pdf.DownloadInvoicePDF(c.Context(), GetBranchID(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}
