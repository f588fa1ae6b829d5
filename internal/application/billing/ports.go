package billing

import (
	"context"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// SaleDocument reúne lo necesario para la representación impresa de una venta.
// Customer puede ser nil (venta a consumidor final sin registro).
type SaleDocument struct {
	Sale     *entity.Sale
	Invoice  *entity.Invoice
	Customer *entity.Customer
}

// InvoicePDFGenerator renderiza el documento de una venta. Implementado con Maroto en infrastructure/pdf.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, doc SaleDocument) ([]byte, error)
}
