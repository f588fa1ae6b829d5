package memory

import (
	"context"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*MovementRepo)(nil)

// MovementRepo auditoría de movimientos en memoria.
// Dentro de una transacción los movimientos quedan en pending hasta el commit.
type MovementRepo struct {
	s       *Store
	pending *[]entity.InventoryMovement
}

func (r *MovementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	if r.pending != nil {
		*r.pending = append(*r.pending, *m)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movements = append(r.s.movements, *m)
	return nil
}

// ListByReference devuelve los movimientos de una venta en orden de registro.
func (r *MovementRepo) ListByReference(_ context.Context, reference string) ([]*entity.InventoryMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.InventoryMovement, 0)
	for _, m := range r.s.movements {
		if m.Reference == reference {
			m := m
			out = append(out, &m)
		}
	}
	return out, nil
}
