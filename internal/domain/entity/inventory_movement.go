package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento registrados por el ledger de lotes.
const (
	MovementTypeOUT      = "OUT"      // salida por venta
	MovementTypeREVERSAL = "REVERSAL" // reintegro por compensación o anulación
)

// InventoryMovement registra cada cambio de cantidad de un lote.
type InventoryMovement struct {
	ID        string
	Reference string // ID de la venta que originó el movimiento
	LotID     string
	ProductID string
	BranchID  string
	Type      string
	Quantity  int // negativo salida, positivo reintegro
	UnitCost  decimal.Decimal
	TotalCost decimal.Decimal
	Reason    string
	CreatedAt time.Time
}
