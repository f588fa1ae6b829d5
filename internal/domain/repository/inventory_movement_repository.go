package repository

import (
	"context"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// InventoryMovementRepository registra la auditoría de cambios de los lotes.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	ListByReference(ctx context.Context, reference string) ([]*entity.InventoryMovement, error)
}
