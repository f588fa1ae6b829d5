package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo facturas en memoria, una por venta.
type InvoiceRepo struct {
	s *Store
}

func (r *InvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	if inv == nil || inv.SaleID == "" || inv.Number == "" {
		return domain.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.invoices[inv.SaleID]; exists {
		return fmt.Errorf("la venta %s ya tiene factura: %w", inv.SaleID, domain.ErrDuplicate)
	}
	r.s.invoices[inv.SaleID] = *inv
	return nil
}

func (r *InvoiceRepo) GetBySaleID(_ context.Context, saleID string) (*entity.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	inv, ok := r.s.invoices[saleID]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

// NextNumber reserva el consecutivo del prefijo; los números no se reutilizan.
func (r *InvoiceRepo) NextNumber(_ context.Context, prefix string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.invoiceSeqs[prefix]++
	return fmt.Sprintf("%s-%06d", prefix, r.s.invoiceSeqs[prefix]), nil
}
