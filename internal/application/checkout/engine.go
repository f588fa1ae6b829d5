package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/farmacia-pos/internal/application/billing"
	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

// DefaultSalesTopic topic de eventos si no se configura otro.
const DefaultSalesTopic = "pharmacy.sales"

// Result es lo que recibe el cajero al cobrar. La venta es definitiva aunque
// InvoiceError no sea nil: la factura se puede reintentar después.
type Result struct {
	Sale         *entity.Sale
	Invoice      *entity.Invoice
	InvoiceError error
}

// Engine confirma borradores: asigna lotes de todos los productos, persiste la
// venta y solo entonces cierra el borrador. Si algo falla antes de persistir,
// reintegra todo lo asignado y el borrador queda en AWAITING_CHECKOUT.
type Engine struct {
	drafts    DraftCheckout
	ledger    Ledger
	customers CustomerResolver
	saleRepo  repository.SaleRepository
	invoices  InvoiceIssuer
	publisher EventPublisher
	topic     string
	now       func() time.Time
	log       zerolog.Logger
}

// Deps agrupa las dependencias del motor.
type Deps struct {
	Drafts    DraftCheckout
	Ledger    Ledger
	Customers CustomerResolver
	SaleRepo  repository.SaleRepository
	Invoices  InvoiceIssuer
	Publisher EventPublisher // opcional
	Topic     string
	Logger    *logger.Logger
}

// NewEngine construye el motor de cobro.
func NewEngine(d Deps) *Engine {
	if d.Topic == "" {
		d.Topic = DefaultSalesTopic
	}
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	return &Engine{
		drafts:    d.Drafts,
		ledger:    d.Ledger,
		customers: d.Customers,
		saleRepo:  d.SaleRepo,
		invoices:  d.Invoices,
		publisher: d.Publisher,
		topic:     d.Topic,
		now:       time.Now,
		log:       d.Logger.Component("checkout"),
	}
}

// WithClock reemplaza el reloj (tests).
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// CompleteSale cobra el borrador del cajero.
//
// Errores:
//   - domain.ErrNoActiveSale / ErrInvalidTransition / ErrEmptyCart: borrador ausente o fuera de AWAITING_CHECKOUT.
//   - domain.ErrInvalidInput / ErrNotFound: cliente o medio de pago inválidos.
//   - domain.ErrInsufficientStock / ErrAllocationConflict: no se pudo asignar; nada quedó descontado.
//   - domain.ErrPersistence: no se guardó la venta; nada quedó descontado.
func (e *Engine) CompleteSale(ctx context.Context, staffID string, in dto.CompleteSaleRequest) (*Result, error) {
	var sale *entity.Sale

	err := e.drafts.Checkout(staffID, func(draft *entity.DraftSale) error {
		method := strings.ToLower(strings.TrimSpace(in.PaymentMethod))
		if !entity.IsValidPaymentMethod(method) {
			return fmt.Errorf("%w: medio de pago %q", domain.ErrInvalidInput, in.PaymentMethod)
		}
		customer, err := e.customers.Resolve(ctx, in.CustomerID, in.NewCustomer)
		if err != nil {
			return err
		}

		saleID := uuid.New().String()
		allocations, err := e.allocateAll(ctx, draft, saleID)
		if err != nil {
			return err
		}

		s := entity.NewSaleFromDraft(saleID, draft, customer, method, allocations, e.now())
		if name := strings.TrimSpace(in.CustomerName); name != "" {
			s.CustomerName = name
		}
		if err := e.saleRepo.Save(ctx, s); err != nil {
			e.log.Error().Err(err).Str("sale_id", saleID).Str("staff_id", staffID).Msg("no se pudo guardar la venta")
			return e.compensate(ctx, allocations, fmt.Errorf("%w: %v", domain.ErrPersistence, err))
		}
		sale = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("sale_id", sale.ID).
		Str("staff_id", staffID).
		Str("total", sale.Total.StringFixed(2)).
		Int("items", len(sale.Items)).
		Msg("venta confirmada")

	res := &Result{Sale: sale}
	inv, err := e.invoices.Issue(ctx, sale)
	if err != nil {
		e.log.Error().Err(err).Str("sale_id", sale.ID).Msg("falló la emisión de la factura; la venta queda confirmada")
		res.Invoice = billing.FailedInvoice(sale.ID)
		res.InvoiceError = err
	} else {
		res.Invoice = inv
	}

	e.publish(ctx, newSaleEvent(EventSaleCompleted, sale, inv, e.now()))
	return res, nil
}

// allocateAll asigna lotes línea por línea en el orden del borrador.
// Ante el primer fallo reintegra lo ya asignado antes de devolver el error.
func (e *Engine) allocateAll(ctx context.Context, draft *entity.DraftSale, saleID string) ([]entity.Allocation, error) {
	items := draft.Items()
	allocations := make([]entity.Allocation, 0, len(items))
	for _, it := range items {
		alloc, err := e.ledger.Allocate(ctx, draft.BranchID, it.ProductID, it.Quantity, saleID)
		if err != nil {
			e.log.Warn().Err(err).Str("sale_id", saleID).Str("product_id", it.ProductID).Msg("asignación fallida, compensando")
			return nil, e.compensate(ctx, allocations, err)
		}
		allocations = append(allocations, alloc)
	}
	return allocations, nil
}

// compensate reintegra las asignaciones en orden inverso. Usa un contexto que no
// se cancela con la petición para no dejar descuentos huérfanos.
func (e *Engine) compensate(ctx context.Context, allocations []entity.Allocation, cause error) error {
	bg := context.WithoutCancel(ctx)
	var errs []error
	for i := len(allocations) - 1; i >= 0; i-- {
		if err := e.ledger.Release(bg, allocations[i], "compensación"); err != nil {
			e.log.Error().Err(err).
				Str("product_id", allocations[i].ProductID).
				Str("reference", allocations[i].Reference).
				Int("quantity", allocations[i].Total()).
				Msg("no se pudo compensar la asignación")
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{cause}, errs...)...)
	}
	return cause
}

// GetSale devuelve la venta; branchID vacío no restringe la sucursal.
func (e *Engine) GetSale(ctx context.Context, saleID, branchID string) (*entity.Sale, error) {
	if saleID == "" {
		return nil, domain.ErrInvalidInput
	}
	sale, err := e.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("checkout: obtener venta %s: %w", saleID, err)
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	if branchID != "" && sale.BranchID != branchID {
		return nil, domain.ErrForbidden
	}
	return sale, nil
}

// IssueInvoice reintenta la factura de una venta completada.
func (e *Engine) IssueInvoice(ctx context.Context, saleID, branchID string) (*entity.Invoice, error) {
	sale, err := e.GetSale(ctx, saleID, branchID)
	if err != nil {
		return nil, err
	}
	return e.invoices.Issue(ctx, sale)
}

// CancelSale anula una venta completada y devuelve a sus lotes lo que se vendió.
// Solo reintegra quien gana la transición completed -> cancelled en el repositorio,
// así una venta no se reintegra dos veces aunque varias instancias la anulen a la vez.
func (e *Engine) CancelSale(ctx context.Context, saleID, branchID, staffID, reason string) (*entity.Sale, error) {
	sale, err := e.GetSale(ctx, saleID, branchID)
	if err != nil {
		return nil, err
	}
	from := sale.Status
	now := e.now()
	if err := sale.Cancel(now); err != nil {
		return nil, err
	}
	if err := e.saleRepo.UpdateStatus(ctx, sale.ID, from, sale.Status, now); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	if reason == "" {
		reason = "anulación"
	}
	bg := context.WithoutCancel(ctx)
	var errs []error
	for _, alloc := range sale.Allocations {
		if err := e.ledger.Release(bg, alloc, reason); err != nil {
			errs = append(errs, err)
		}
	}
	e.log.Info().Str("sale_id", sale.ID).Str("staff_id", staffID).Str("reason", reason).Msg("venta anulada")
	if len(errs) > 0 {
		e.log.Error().Err(errors.Join(errs...)).Str("sale_id", sale.ID).Msg("reintegro incompleto de la venta anulada")
		return sale, fmt.Errorf("venta anulada con reintegro incompleto: %w", errors.Join(errs...))
	}

	e.publish(ctx, newSaleEvent(EventSaleCancelled, sale, nil, now))
	return sale, nil
}

// publish no falla la operación: el evento es informativo.
func (e *Engine) publish(ctx context.Context, ev SaleEvent) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.PublishEvent(ctx, e.topic, ev.SaleID, ev); err != nil {
		e.log.Warn().Err(err).Str("sale_id", ev.SaleID).Str("event", ev.Type).Msg("no se pudo publicar el evento")
	}
}
