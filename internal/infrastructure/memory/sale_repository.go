package memory

import (
	"context"
	"slices"
	"time"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas confirmadas en memoria. Guarda y devuelve copias.
type SaleRepo struct {
	s *Store
}

func (r *SaleRepo) Save(_ context.Context, sale *entity.Sale) error {
	if sale == nil || sale.ID == "" {
		return domain.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.sales[sale.ID]; exists {
		return domain.ErrInvalidInput
	}
	r.s.sales[sale.ID] = cloneSale(sale)
	return nil
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sale, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	return cloneSale(sale), nil
}

// ListByDateRange incluye ambos extremos; el resultado va ordenado por fecha de creación.
func (r *SaleRepo) ListByDateRange(_ context.Context, branchID string, from, to time.Time) ([]*entity.Sale, error) {
	r.s.mu.RLock()
	out := make([]*entity.Sale, 0)
	for _, sale := range r.s.sales {
		if branchID != "" && sale.BranchID != branchID {
			continue
		}
		if sale.CreatedAt.Before(from) || sale.CreatedAt.After(to) {
			continue
		}
		out = append(out, cloneSale(sale))
	}
	r.s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *entity.Sale) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (r *SaleRepo) UpdateStatus(_ context.Context, id, from, to string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sale, ok := r.s.sales[id]
	if !ok {
		return domain.ErrNotFound
	}
	if sale.Status != from {
		return domain.ErrInvalidTransition
	}
	sale.Status = to
	sale.UpdatedAt = at
	return nil
}
