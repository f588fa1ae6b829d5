package repository

import (
	"context"
	"time"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// SaleRepository persiste ventas confirmadas (cabecera, líneas y lotes asignados).
type SaleRepository interface {
	Save(ctx context.Context, sale *entity.Sale) error
	// GetByID devuelve (nil, nil) si la venta no existe.
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// ListByDateRange devuelve las ventas con CreatedAt en [from, to] (ambos inclusive).
	// branchID vacío significa todas las sucursales.
	ListByDateRange(ctx context.Context, branchID string, from, to time.Time) ([]*entity.Sale, error)
	// UpdateStatus pasa la venta de from a to solo si sigue en from.
	// Devuelve ErrNotFound si no existe y ErrInvalidTransition si otro proceso ya la cambió.
	UpdateStatus(ctx context.Context, id, from, to string, at time.Time) error
}
