package memory

import (
	"context"
	"slices"
	"time"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/inventory"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo lotes en memoria. Dentro de TxRunner.Run se usa con un registro de deshacer.
type LotRepo struct {
	s    *Store
	undo *[]func()
}

// ListByProduct devuelve todos los lotes del producto en la sucursal, en orden FEFO.
func (r *LotRepo) ListByProduct(_ context.Context, branchID, productID string) ([]entity.Lot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.Lot, 0, 4)
	for _, l := range r.s.lots {
		if l.BranchID == branchID && l.ProductID == productID {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, inventory.CompareFEFO)
	return out, nil
}

// ListByBranch devuelve los lotes de la sucursal; branchID vacío incluye todas.
func (r *LotRepo) ListByBranch(_ context.Context, branchID string) ([]entity.Lot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.Lot, 0, len(r.s.lots))
	for _, l := range r.s.lots {
		if branchID == "" || l.BranchID == branchID {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, inventory.CompareFEFO)
	return out, nil
}

// ListForUpdate devuelve los lotes vendibles a asOf. En memoria el bloqueo lo da el ledger.
func (r *LotRepo) ListForUpdate(ctx context.Context, branchID, productID string, asOf time.Time) ([]entity.Lot, error) {
	lots, err := r.ListByProduct(ctx, branchID, productID)
	if err != nil {
		return nil, err
	}
	return inventory.SellableLots(lots, asOf), nil
}

// AdjustQuantity suma delta a la cantidad del lote; rechaza dejarla negativa.
func (r *LotRepo) AdjustQuantity(_ context.Context, lotID string, delta int, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.lots[lotID]
	if !ok {
		return domain.ErrNotFound
	}
	if l.Quantity+delta < 0 {
		return domain.NewInsufficientStock(l.ProductID, -delta, l.Quantity)
	}
	prevUpdated := l.UpdatedAt
	l.Quantity += delta
	l.UpdatedAt = at
	r.s.lots[lotID] = l

	if r.undo != nil {
		*r.undo = append(*r.undo, func() {
			cur := r.s.lots[lotID]
			cur.Quantity -= delta
			cur.UpdatedAt = prevUpdated
			r.s.lots[lotID] = cur
		})
	}
	return nil
}

// GetByID devuelve (nil, nil) si el lote no existe.
func (r *LotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.lots[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

// Create registra un lote nuevo.
func (r *LotRepo) Create(_ context.Context, lot *entity.Lot) error {
	if lot.ID == "" || lot.ProductID == "" || lot.BranchID == "" || lot.Quantity < 0 {
		return domain.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.lots[lot.ID]; exists {
		return domain.ErrInvalidInput
	}
	r.s.lots[lot.ID] = *lot
	return nil
}
