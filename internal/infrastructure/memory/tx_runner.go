package memory

import (
	"context"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

// TxRunner cumple inventory.TxRunner; emula una transacción: si fn falla deshace los ajustes de lotes
// en orden inverso y descarta los movimientos pendientes.
// No bloquea el Store completo; la exclusión por producto la pone el ledger.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el Store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

func (r *TxRunner) Run(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	movRepo repository.InventoryMovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var undo []func()
	var pending []entity.InventoryMovement
	lotRepo := &LotRepo{s: r.s, undo: &undo}
	movRepo := &MovementRepo{s: r.s, pending: &pending}

	if err := fn(lotRepo, movRepo); err != nil {
		r.s.mu.Lock()
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		r.s.mu.Unlock()
		return err
	}

	r.s.mu.Lock()
	r.s.movements = append(r.s.movements, pending...)
	r.s.mu.Unlock()
	return nil
}
