package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo lector del catálogo en memoria.
type ProductRepo struct {
	s *Store
}

// GetByID devuelve (nil, nil) si el producto no existe.
func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Search busca por nombre o SKU (sin distinguir mayúsculas) entre los productos activos.
func (r *ProductRepo) Search(_ context.Context, query string, limit int) ([]*entity.Product, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	r.s.mu.RLock()
	out := make([]*entity.Product, 0)
	for _, p := range r.s.products {
		if !p.Active {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.SKU), q) {
			continue
		}
		p := p
		out = append(out, &p)
	}
	r.s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *entity.Product) int { return cmp.Compare(a.Name, b.Name) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
