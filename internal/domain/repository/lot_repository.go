package repository

import (
	"context"
	"time"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// LotRepository define el puerto de persistencia de lotes por sucursal+producto.
// Solo el ledger descuenta cantidades; la creación de lotes la hace el módulo de inventario externo.
type LotRepository interface {
	// ListByProduct devuelve todos los lotes (lectura sin bloqueo).
	ListByProduct(ctx context.Context, branchID, productID string) ([]entity.Lot, error)
	// ListByBranch devuelve todos los lotes de la sucursal (vacío = todas), en orden FEFO.
	ListByBranch(ctx context.Context, branchID string) ([]entity.Lot, error)
	// ListForUpdate devuelve los lotes vendibles a asOf en orden FEFO y los bloquea
	// hasta el fin de la transacción (SELECT ... FOR UPDATE).
	ListForUpdate(ctx context.Context, branchID, productID string, asOf time.Time) ([]entity.Lot, error)
	// AdjustQuantity suma delta a la cantidad del lote; nunca la deja negativa.
	AdjustQuantity(ctx context.Context, lotID string, delta int, at time.Time) error
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	Create(ctx context.Context, lot *entity.Lot) error
}
