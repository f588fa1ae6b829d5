package repository

import (
	"context"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para la referencia de factura.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	// GetBySaleID devuelve (nil, nil) si la venta no tiene factura.
	GetBySaleID(ctx context.Context, saleID string) (*entity.Invoice, error)
	// NextNumber reserva el siguiente consecutivo para el prefijo (ej. "FV-000123").
	NextNumber(ctx context.Context, prefix string) (string, error)
}
