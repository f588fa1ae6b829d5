package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la referencia de factura. Una sola por venta (sale_id único).
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO invoices (id, sale_id, number, status, issued_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		inv.ID, inv.SaleID, inv.Number, inv.Status, inv.IssuedAt, inv.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: la venta %s ya tiene factura", domain.ErrDuplicate, inv.SaleID)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetBySaleID obtiene la factura de una venta.
func (r *InvoiceRepo) GetBySaleID(ctx context.Context, saleID string) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := r.q.QueryRow(ctx, `
		SELECT id, sale_id, number, status, issued_at, created_at
		FROM invoices WHERE sale_id = $1`, saleID).Scan(
		&inv.ID, &inv.SaleID, &inv.Number, &inv.Status, &inv.IssuedAt, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

// NextNumber incrementa el consecutivo del prefijo con un upsert atómico.
func (r *InvoiceRepo) NextNumber(ctx context.Context, prefix string) (string, error) {
	var next int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO invoice_sequences (prefix, last_number) VALUES ($1, 1)
		ON CONFLICT (prefix) DO UPDATE SET last_number = invoice_sequences.last_number + 1
		RETURNING last_number`, prefix).Scan(&next)
	if err != nil {
		return "", fmt.Errorf("next invoice number: %w", err)
	}
	return fmt.Sprintf("%s-%06d", prefix, next), nil
}
