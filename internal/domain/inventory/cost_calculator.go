package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// CostCalculator implementa el costo promedio ponderado (servicio de dominio).
// CostoPromedio = Σ(Cantidad_i * Costo_i) / Σ Cantidad_i
func CostCalculator(lots []entity.LotAllocation) decimal.Decimal {
	qty := decimal.Zero
	num := decimal.Zero
	for _, l := range lots {
		q := decimal.NewFromInt(int64(l.Quantity))
		qty = qty.Add(q)
		num = num.Add(q.Mul(l.UnitCost))
	}
	if qty.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return num.Div(qty)
}
