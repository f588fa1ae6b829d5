package inventory

import (
	"cmp"
	"slices"
	"time"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// CompareFEFO ordena primero lo que vence antes, luego lo recibido antes.
// El ID desempata para que el orden sea determinista.
func CompareFEFO(a, b entity.Lot) int {
	if c := a.ExpiryDate.Compare(b.ExpiryDate); c != 0 {
		return c
	}
	if c := a.ReceivedAt.Compare(b.ReceivedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// SellableLots devuelve los lotes con cantidad y sin vencer, en orden FEFO.
// No modifica el slice recibido.
func SellableLots(lots []entity.Lot, asOf time.Time) []entity.Lot {
	out := make([]entity.Lot, 0, len(lots))
	for _, l := range lots {
		if l.Quantity <= 0 || l.IsExpired(asOf) {
			continue
		}
		out = append(out, l)
	}
	slices.SortFunc(out, CompareFEFO)
	return out
}

// AvailableQuantity suma la cantidad de los lotes vendibles.
func AvailableQuantity(lots []entity.Lot, asOf time.Time) int {
	total := 0
	for _, l := range lots {
		if l.Quantity <= 0 || l.IsExpired(asOf) {
			continue
		}
		total += l.Quantity
	}
	return total
}

// PlanFEFO decide qué lotes cubren la cantidad solicitada (First-Expire-First-Out).
// Toma min(lote, restante) de cada lote en orden; si no alcanza devuelve
// InsufficientStockError y ningún plan, para que no haya descuento parcial.
func PlanFEFO(productID string, lots []entity.Lot, requested int, asOf time.Time) ([]entity.LotAllocation, error) {
	if requested <= 0 {
		return nil, domain.ErrInvalidInput
	}
	remaining := requested
	plan := make([]entity.LotAllocation, 0, 2)
	for _, lot := range SellableLots(lots, asOf) {
		if remaining == 0 {
			break
		}
		take := min(lot.Quantity, remaining)
		plan = append(plan, entity.LotAllocation{
			LotID:     lot.ID,
			BatchCode: lot.BatchCode,
			Quantity:  take,
			UnitCost:  lot.UnitCost,
		})
		remaining -= take
	}
	if remaining > 0 {
		return nil, domain.NewInsufficientStock(productID, requested, requested-remaining)
	}
	return plan, nil
}
