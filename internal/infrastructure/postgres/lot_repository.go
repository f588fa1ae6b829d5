package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `id, product_id, branch_id, batch_code, quantity, unit_cost, expiry_date, received_at, updated_at`

// LotRepo implementación de LotRepository (usable con pool o tx).
// ListForUpdate solo tiene sentido dentro de una tx.
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// ListByProduct devuelve todos los lotes de la sucursal para el producto, en orden FEFO.
func (r *LotRepo) ListByProduct(ctx context.Context, branchID, productID string) ([]entity.Lot, error) {
	query := `SELECT ` + lotColumns + `
		FROM lots WHERE branch_id = $1 AND product_id = $2
		ORDER BY expiry_date ASC, received_at ASC, id ASC`
	rows, err := r.q.Query(ctx, query, branchID, productID)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	return scanLots(rows)
}

// ListByBranch devuelve los lotes de la sucursal (vacío = todas) sin bloquearlos.
func (r *LotRepo) ListByBranch(ctx context.Context, branchID string) ([]entity.Lot, error) {
	query := `SELECT ` + lotColumns + `
		FROM lots WHERE ($1 = '' OR branch_id = $1)
		ORDER BY expiry_date ASC, received_at ASC, id ASC`
	rows, err := r.q.Query(ctx, query, branchID)
	if err != nil {
		return nil, fmt.Errorf("list branch lots: %w", err)
	}
	return scanLots(rows)
}

// ListForUpdate bloquea los lotes vendibles (cantidad > 0 y no vencidos a asOf).
// El orden del SELECT es también el orden de bloqueo, así dos cobros del mismo producto no se cruzan.
func (r *LotRepo) ListForUpdate(ctx context.Context, branchID, productID string, asOf time.Time) ([]entity.Lot, error) {
	query := `SELECT ` + lotColumns + `
		FROM lots
		WHERE branch_id = $1 AND product_id = $2 AND quantity > 0 AND expiry_date >= $3
		ORDER BY expiry_date ASC, received_at ASC, id ASC
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, branchID, productID, entity.DateOnly(asOf))
	if err != nil {
		if isLockTimeout(err) {
			return nil, domain.ErrAllocationConflict
		}
		return nil, fmt.Errorf("lock lots: %w", err)
	}
	lots, err := scanLots(rows)
	if err != nil && isLockTimeout(err) {
		return nil, domain.ErrAllocationConflict
	}
	return lots, err
}

// AdjustQuantity aplica delta; el WHERE impide dejar la cantidad negativa.
func (r *LotRepo) AdjustQuantity(ctx context.Context, lotID string, delta int, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE lots SET quantity = quantity + $2, updated_at = $3 WHERE id = $1 AND quantity + $2 >= 0`,
		lotID, delta, at,
	)
	if err != nil {
		if isLockTimeout(err) {
			return domain.ErrAllocationConflict
		}
		return fmt.Errorf("adjust lot quantity: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	lot, err := r.GetByID(ctx, lotID)
	if err != nil {
		return err
	}
	if lot == nil {
		return fmt.Errorf("lote %s: %w", lotID, domain.ErrNotFound)
	}
	return domain.NewInsufficientStock(lot.ProductID, -delta, lot.Quantity)
}

// GetByID obtiene un lote por ID.
func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	var l entity.Lot
	err := r.q.QueryRow(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1`, id).Scan(
		&l.ID, &l.ProductID, &l.BranchID, &l.BatchCode, &l.Quantity, &l.UnitCost,
		&l.ExpiryDate, &l.ReceivedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return &l, nil
}

// Create registra un lote recibido.
func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	if lot.Quantity < 0 {
		return fmt.Errorf("%w: cantidad negativa", domain.ErrInvalidInput)
	}
	if lot.UpdatedAt.IsZero() {
		lot.UpdatedAt = lot.ReceivedAt
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO lots (`+lotColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		lot.ID, lot.ProductID, lot.BranchID, lot.BatchCode, lot.Quantity, lot.UnitCost,
		entity.DateOnly(lot.ExpiryDate), lot.ReceivedAt, lot.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: lote duplicado", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

func scanLots(rows pgx.Rows) ([]entity.Lot, error) {
	defer rows.Close()
	var list []entity.Lot
	for rows.Next() {
		var l entity.Lot
		if err := rows.Scan(&l.ID, &l.ProductID, &l.BranchID, &l.BatchCode, &l.Quantity, &l.UnitCost,
			&l.ExpiryDate, &l.ReceivedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
