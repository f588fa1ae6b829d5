package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

// StockReader da la cantidad vendible de un producto (lectura sin bloqueo del ledger).
type StockReader interface {
	AvailableQuantity(ctx context.Context, branchID, productID string) (int, error)
}

// DraftService mantiene un borrador activo por usuario (cajero).
// Cada borrador tiene un único escritor: su entrada se bloquea durante cada operación.
type DraftService struct {
	productRepo repository.ProductRepository
	stock       StockReader
	now         func() time.Time
	log         zerolog.Logger

	mu     sync.Mutex
	drafts map[string]*draftEntry // por staff_id
}

type draftEntry struct {
	mu    sync.Mutex
	draft *entity.DraftSale
}

// NewDraftService construye el registro de borradores.
func NewDraftService(productRepo repository.ProductRepository, stock StockReader, log *logger.Logger) *DraftService {
	if log == nil {
		log = logger.Nop()
	}
	return &DraftService{
		productRepo: productRepo,
		stock:       stock,
		now:         time.Now,
		log:         log.Component("cart"),
		drafts:      make(map[string]*draftEntry),
	}
}

// WithClock reemplaza el reloj (tests).
func (s *DraftService) WithClock(now func() time.Time) *DraftService {
	s.now = now
	return s
}

// Start abre un borrador vacío para el usuario en su sucursal.
func (s *DraftService) Start(_ context.Context, staffID, branchID string) (*entity.DraftSale, error) {
	if staffID == "" || branchID == "" {
		return nil, domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.drafts[staffID]; exists {
		return nil, domain.ErrDraftAlreadyActive
	}
	d := entity.NewDraftSale(uuid.New().String(), staffID, branchID, s.now())
	s.drafts[staffID] = &draftEntry{draft: d}

	s.log.Debug().Str("staff_id", staffID).Str("draft_id", d.ID).Msg("venta iniciada")
	return d.Clone(), nil
}

// Get devuelve una copia del borrador activo del usuario.
func (s *DraftService) Get(_ context.Context, staffID string) (*entity.DraftSale, error) {
	var out *entity.DraftSale
	err := s.withDraft(staffID, func(d *entity.DraftSale) error {
		out = d.Clone()
		return nil
	})
	return out, err
}

// AddItem agrega el producto (o suma a su línea) validando contra el stock vendible actual.
func (s *DraftService) AddItem(ctx context.Context, staffID, productID string, quantity int) (*entity.DraftSale, error) {
	if productID == "" || quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	return s.mutate(staffID, func(d *entity.DraftSale) error {
		product, err := s.productRepo.GetByID(ctx, productID)
		if err != nil {
			return fmt.Errorf("cart: leer producto %s: %w", productID, err)
		}
		if product == nil || !product.Active {
			return domain.ErrNotFound
		}
		available, err := s.stock.AvailableQuantity(ctx, d.BranchID, productID)
		if err != nil {
			return err
		}
		return d.AddItem(product, quantity, available, s.now())
	})
}

// RemoveItem quita la línea del producto; si no está no hace nada.
func (s *DraftService) RemoveItem(_ context.Context, staffID, productID string) (*entity.DraftSale, error) {
	return s.mutate(staffID, func(d *entity.DraftSale) error {
		return d.RemoveItem(productID, s.now())
	})
}

// SetQuantity reemplaza la cantidad de una línea. 0 no elimina: es entrada inválida.
func (s *DraftService) SetQuantity(ctx context.Context, staffID, productID string, quantity int) (*entity.DraftSale, error) {
	if productID == "" || quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	return s.mutate(staffID, func(d *entity.DraftSale) error {
		if d.QuantityOf(productID) == 0 {
			return domain.ErrNotFound
		}
		available, err := s.stock.AvailableQuantity(ctx, d.BranchID, productID)
		if err != nil {
			return err
		}
		return d.SetQuantity(productID, quantity, available, s.now())
	})
}

// ProceedToCheckout cierra la edición y deja el borrador listo para cobrar.
func (s *DraftService) ProceedToCheckout(_ context.Context, staffID string) (*entity.DraftSale, error) {
	return s.mutate(staffID, func(d *entity.DraftSale) error {
		return d.ProceedToCheckout(s.now())
	})
}

// Reopen vuelve a BUILDING para corregir cantidades después de un cobro fallido.
func (s *DraftService) Reopen(_ context.Context, staffID string) (*entity.DraftSale, error) {
	return s.mutate(staffID, func(d *entity.DraftSale) error {
		return d.Reopen(s.now())
	})
}

// Cancel descarta el borrador sin tocar inventario. No espera: si hay un cobro
// en curso sobre el borrador devuelve ErrInvalidTransition.
func (s *DraftService) Cancel(_ context.Context, staffID string) error {
	e := s.entry(staffID)
	if e == nil {
		return domain.ErrNoActiveSale
	}
	if !e.mu.TryLock() {
		return domain.ErrInvalidTransition
	}
	defer e.mu.Unlock()
	if e.draft.IsTerminal() {
		return domain.ErrNoActiveSale
	}
	if err := e.draft.Cancel(s.now()); err != nil {
		return err
	}
	s.drop(staffID, e)
	s.log.Debug().Str("staff_id", staffID).Str("draft_id", e.draft.ID).Msg("venta cancelada")
	return nil
}

// Checkout bloquea el borrador mientras fn confirma la venta con una copia.
// Si fn termina bien el borrador pasa a COMMITTED y sale del registro;
// si falla queda en AWAITING_CHECKOUT para reintentar.
func (s *DraftService) Checkout(staffID string, fn func(draft *entity.DraftSale) error) error {
	return s.withDraft(staffID, func(d *entity.DraftSale) error {
		if d.Status != entity.DraftStatusAwaitingCheckout {
			return domain.ErrInvalidTransition
		}
		if d.IsEmpty() {
			return domain.ErrEmptyCart
		}
		if err := fn(d.Clone()); err != nil {
			return err
		}
		if err := d.MarkCommitted(s.now()); err != nil {
			return err
		}
		s.dropLocked(staffID)
		return nil
	})
}

// ActiveCount devuelve cuántos borradores hay abiertos.
func (s *DraftService) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}

func (s *DraftService) mutate(staffID string, fn func(d *entity.DraftSale) error) (*entity.DraftSale, error) {
	var out *entity.DraftSale
	err := s.withDraft(staffID, func(d *entity.DraftSale) error {
		// Se trabaja sobre una copia: si fn falla el borrador no cambia.
		work := d.Clone()
		if err := fn(work); err != nil {
			return err
		}
		*d = *work
		out = work.Clone()
		return nil
	})
	return out, err
}

func (s *DraftService) withDraft(staffID string, fn func(d *entity.DraftSale) error) error {
	e := s.entry(staffID)
	if e == nil {
		return domain.ErrNoActiveSale
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	// Pudo cerrarse mientras se esperaba el bloqueo.
	if e.draft.IsTerminal() {
		return domain.ErrNoActiveSale
	}
	return fn(e.draft)
}

func (s *DraftService) entry(staffID string) *draftEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts[staffID]
}

func (s *DraftService) drop(staffID string, e *draftEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drafts[staffID] == e {
		delete(s.drafts, staffID)
	}
}

// dropLocked se llama con la entrada bloqueada; la entrada del registro sigue siendo la misma
// porque solo Cancel y Checkout la quitan y ambos toman su bloqueo.
func (s *DraftService) dropLocked(staffID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, staffID)
}
