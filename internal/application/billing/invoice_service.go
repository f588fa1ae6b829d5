package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

// DefaultInvoicePrefix prefijo del consecutivo si no se configura otro.
const DefaultInvoicePrefix = "FV"

// InvoiceService emite la referencia de factura de una venta ya confirmada.
// Es un artefacto derivado: si falla, la venta sigue siendo definitiva.
type InvoiceService struct {
	invoiceRepo repository.InvoiceRepository
	prefix      string
	now         func() time.Time
}

// NewInvoiceService construye el servicio.
func NewInvoiceService(invoiceRepo repository.InvoiceRepository, prefix string) *InvoiceService {
	if prefix == "" {
		prefix = DefaultInvoicePrefix
	}
	return &InvoiceService{invoiceRepo: invoiceRepo, prefix: prefix, now: time.Now}
}

// Issue reserva el número y registra la factura de la venta.
// Si la venta ya tiene factura la devuelve sin emitir otra, también cuando otro
// reintento la registró entre la consulta y el guardado.
func (s *InvoiceService) Issue(ctx context.Context, sale *entity.Sale) (*entity.Invoice, error) {
	if sale == nil || sale.ID == "" {
		return nil, domain.ErrInvalidInput
	}
	if sale.Status != entity.SaleStatusCompleted {
		return nil, fmt.Errorf("%w: la venta %s no está completada", domain.ErrInvalidTransition, sale.ID)
	}
	existing, err := s.invoiceRepo.GetBySaleID(ctx, sale.ID)
	if err != nil {
		return nil, fmt.Errorf("factura: consultar venta %s: %w", sale.ID, err)
	}
	if existing != nil {
		return existing, nil
	}

	number, err := s.invoiceRepo.NextNumber(ctx, s.prefix)
	if err != nil {
		return nil, fmt.Errorf("factura: reservar consecutivo: %w", err)
	}
	now := s.now()
	inv := &entity.Invoice{
		ID:        uuid.New().String(),
		SaleID:    sale.ID,
		Number:    number,
		Status:    entity.InvoiceStatusIssued,
		IssuedAt:  now,
		CreatedAt: now,
	}
	if err := s.invoiceRepo.Create(ctx, inv); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// El consecutivo reservado queda sin usar; no se reutilizan números.
			if winner, gerr := s.invoiceRepo.GetBySaleID(ctx, sale.ID); gerr == nil && winner != nil {
				return winner, nil
			}
		}
		return nil, fmt.Errorf("factura: guardar %s: %w", number, err)
	}
	return inv, nil
}

// Get devuelve la factura de la venta o ErrNotFound.
func (s *InvoiceService) Get(ctx context.Context, saleID string) (*entity.Invoice, error) {
	inv, err := s.invoiceRepo.GetBySaleID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("factura: consultar venta %s: %w", saleID, err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

// FailedInvoice es la referencia que se devuelve cuando la emisión falló.
// No se persiste; el cajero puede reintentar con Issue.
func FailedInvoice(saleID string) *entity.Invoice {
	return &entity.Invoice{SaleID: saleID, Status: entity.InvoiceStatusErrorGeneration}
}
