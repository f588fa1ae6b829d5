package inventory

import (
	"context"

	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que los descuentos de lotes de un producto y sus movimientos se apliquen todos o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		movRepo repository.InventoryMovementRepository,
	) error) error
}
