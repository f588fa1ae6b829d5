package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// DB es un Querier que además puede abrir transacciones (pool o tx con savepoint).
type DB interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// SaleRepo persiste la venta con sus líneas y lotes asignados en una sola transacción.
type SaleRepo struct {
	db DB
}

// NewSaleRepository construye el adaptador.
func NewSaleRepository(db DB) *SaleRepo {
	return &SaleRepo{db: db}
}

// Save inserta cabecera, líneas y asignaciones; todo o nada.
func (r *SaleRepo) Save(ctx context.Context, sale *entity.Sale) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO sales (id, branch_id, customer_id, customer_name, total, payment_method, status, staff_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			sale.ID, sale.BranchID, nullIfEmpty(sale.CustomerID), sale.CustomerName, sale.Total,
			sale.PaymentMethod, sale.Status, sale.StaffID, sale.CreatedAt, sale.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: venta %s ya existe", domain.ErrInvalidInput, sale.ID)
			}
			return fmt.Errorf("insert sale: %w", err)
		}

		for i, it := range sale.Items {
			_, err := tx.Exec(ctx, `
				INSERT INTO sale_items (sale_id, line_no, product_id, product_name, category, quantity, unit_price, subtotal)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				sale.ID, i+1, it.ProductID, it.ProductName, it.Category, it.Quantity, it.UnitPrice, it.Subtotal(),
			)
			if err != nil {
				return fmt.Errorf("insert sale item: %w", err)
			}
		}

		n := 0
		for _, a := range sale.Allocations {
			for _, la := range a.Lots {
				n++
				_, err := tx.Exec(ctx, `
					INSERT INTO sale_allocations (sale_id, seq, product_id, lot_id, batch_code, quantity, unit_cost)
					VALUES ($1, $2, $3, $4, $5, $6, $7)`,
					sale.ID, n, a.ProductID, la.LotID, la.BatchCode, la.Quantity, la.UnitCost,
				)
				if err != nil {
					return fmt.Errorf("insert sale allocation: %w", err)
				}
			}
		}
		return nil
	})
}

const saleColumns = `id, branch_id, customer_id, customer_name, total, payment_method, status, staff_id, created_at, updated_at`

// GetByID obtiene la venta completa.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	s, err := scanSale(r.db.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if err := r.loadDetails(ctx, []*entity.Sale{s}); err != nil {
		return nil, err
	}
	return s, nil
}

// ListByDateRange devuelve las ventas con created_at en [from, to], más antiguas primero.
func (r *SaleRepo) ListByDateRange(ctx context.Context, branchID string, from, to time.Time) ([]*entity.Sale, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE created_at BETWEEN $1 AND $2 AND ($3 = '' OR branch_id = $3)
		ORDER BY created_at ASC, id ASC`, from, to, branchID)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadDetails(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateStatus cambia el estado; es lo único mutable de una venta.
// La condición sobre el estado actual hace que entre instancias solo una gane la transición.
func (r *SaleRepo) UpdateStatus(ctx context.Context, id, from, to string, at time.Time) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE sales SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`,
		id, from, to, at)
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sales WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if !exists {
		return fmt.Errorf("venta %s: %w", id, domain.ErrNotFound)
	}
	return fmt.Errorf("venta %s ya no está en %s: %w", id, from, domain.ErrInvalidTransition)
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var customerID *string
	if err := row.Scan(&s.ID, &s.BranchID, &customerID, &s.CustomerName, &s.Total,
		&s.PaymentMethod, &s.Status, &s.StaffID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.CustomerID = derefString(customerID)
	return &s, nil
}

// loadDetails completa líneas y asignaciones con dos consultas para todo el lote de ventas.
func (r *SaleRepo) loadDetails(ctx context.Context, sales []*entity.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]string, len(sales))
	byID := make(map[string]*entity.Sale, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
		byID[s.ID] = s
	}

	rows, err := r.db.Query(ctx, `
		SELECT sale_id, product_id, product_name, category, quantity, unit_price
		FROM sale_items WHERE sale_id = ANY($1) ORDER BY sale_id, line_no`, ids)
	if err != nil {
		return fmt.Errorf("list sale items: %w", err)
	}
	for rows.Next() {
		var saleID string
		var it entity.LineItem
		if err := rows.Scan(&saleID, &it.ProductID, &it.ProductName, &it.Category, &it.Quantity, &it.UnitPrice); err != nil {
			rows.Close()
			return fmt.Errorf("scan sale item: %w", err)
		}
		s := byID[saleID]
		s.Items = append(s.Items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.db.Query(ctx, `
		SELECT sale_id, product_id, lot_id, batch_code, quantity, unit_cost
		FROM sale_allocations WHERE sale_id = ANY($1) ORDER BY sale_id, seq`, ids)
	if err != nil {
		return fmt.Errorf("list sale allocations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var saleID, productID string
		var la entity.LotAllocation
		if err := rows.Scan(&saleID, &productID, &la.LotID, &la.BatchCode, &la.Quantity, &la.UnitCost); err != nil {
			return fmt.Errorf("scan sale allocation: %w", err)
		}
		s := byID[saleID]
		// las filas de un mismo producto son consecutivas (seq se asigna por producto)
		if n := len(s.Allocations); n > 0 && s.Allocations[n-1].ProductID == productID {
			s.Allocations[n-1].Lots = append(s.Allocations[n-1].Lots, la)
			continue
		}
		s.Allocations = append(s.Allocations, entity.Allocation{
			BranchID:  s.BranchID,
			ProductID: productID,
			Reference: s.ID,
			Lots:      []entity.LotAllocation{la},
		})
	}
	return rows.Err()
}
