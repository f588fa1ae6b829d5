package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento de lote.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (id, reference, lot_id, product_id, branch_id, type, quantity, unit_cost, total_cost, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Reference, m.LotID, m.ProductID, m.BranchID, m.Type,
		m.Quantity, m.UnitCost, m.TotalCost, nullIfEmpty(m.Reason), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// ListByReference devuelve los movimientos de una venta en orden de registro.
func (r *InventoryMovementRepo) ListByReference(ctx context.Context, reference string) ([]*entity.InventoryMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, reference, lot_id, product_id, branch_id, type, quantity, unit_cost, total_cost, reason, created_at
		FROM inventory_movements WHERE reference = $1 ORDER BY created_at ASC, id ASC`, reference)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		var reason *string
		if err := rows.Scan(&m.ID, &m.Reference, &m.LotID, &m.ProductID, &m.BranchID, &m.Type,
			&m.Quantity, &m.UnitCost, &m.TotalCost, &reason, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.Reason = derefString(reason)
		list = append(list, &m)
	}
	return list, rows.Err()
}
