package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot representa un lote recibido de un producto en una sucursal.
// Los lotes de un mismo producto son bolsas de cantidad independientes.
type Lot struct {
	ID         string
	ProductID  string
	BranchID   string
	BatchCode  string
	Quantity   int // cantidad disponible, nunca negativa
	UnitCost   decimal.Decimal
	ExpiryDate time.Time
	ReceivedAt time.Time
	UpdatedAt  time.Time
}

// IsExpired indica si el lote venció antes del día de asOf.
// Un lote que vence hoy todavía se puede vender.
func (l *Lot) IsExpired(asOf time.Time) bool {
	return DateOnly(l.ExpiryDate).Before(DateOnly(asOf))
}

// DateOnly trunca t a medianoche UTC.
func DateOnly(t time.Time) time.Time {
	return LocalDate(t, time.UTC)
}

// LocalDate devuelve el día calendario de t en loc, expresado como medianoche UTC
// para compararlo con las fechas de vencimiento (columna DATE). loc nil es UTC.
func LocalDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.UTC)
}

// LotAllocation es la cantidad tomada de un lote para una línea de venta.
type LotAllocation struct {
	LotID     string
	BatchCode string
	Quantity  int
	UnitCost  decimal.Decimal
}

// Allocation agrupa los lotes usados para un producto dentro de una venta.
type Allocation struct {
	BranchID  string
	ProductID string
	Reference string // ID de la venta
	Lots      []LotAllocation
}

// Total devuelve la cantidad total asignada.
func (a Allocation) Total() int {
	total := 0
	for _, l := range a.Lots {
		total += l.Quantity
	}
	return total
}

// Cost devuelve el costo total de lo asignado (Σ cantidad × costo del lote).
func (a Allocation) Cost() decimal.Decimal {
	cost := decimal.Zero
	for _, l := range a.Lots {
		cost = cost.Add(l.UnitCost.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return cost
}
