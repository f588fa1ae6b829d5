package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

// PDFUseCase genera la representación impresa de la factura de una venta.
// Solo se permite si la venta ya tiene factura emitida.
type PDFUseCase struct {
	saleRepo     repository.SaleRepository
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	generator    InvoicePDFGenerator
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(
	saleRepo repository.SaleRepository,
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	generator InvoicePDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{
		saleRepo:     saleRepo,
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		generator:    generator,
	}
}

// DownloadInvoicePDF carga venta, factura y cliente y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la venta no existe o no tiene factura.
//   - domain.ErrForbidden        si la venta es de otra sucursal.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, branchID, saleID string) (pdfBytes []byte, filename string, err error) {
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener venta: %w", err)
	}
	if sale == nil {
		return nil, "", domain.ErrNotFound
	}
	if branchID != "" && sale.BranchID != branchID {
		return nil, "", domain.ErrForbidden
	}

	inv, err := uc.invoiceRepo.GetBySaleID(ctx, saleID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil || inv.Status != entity.InvoiceStatusIssued {
		return nil, "", fmt.Errorf("%w: la venta %s no tiene factura emitida", domain.ErrNotFound, saleID)
	}

	var customer *entity.Customer
	if sale.CustomerID != "" {
		// Sin cliente el documento sale con el nombre guardado en la venta.
		customer, _ = uc.customerRepo.GetByID(ctx, sale.CustomerID)
	}

	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, SaleDocument{Sale: sale, Invoice: inv, Customer: customer})
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("factura_%s.pdf", inv.Number), nil
}
