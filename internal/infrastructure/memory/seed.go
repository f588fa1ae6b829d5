package memory

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// SeedBranchID es la sucursal de demostración del modo memoria.
const SeedBranchID = "sucursal-centro"

type seedProduct struct {
	id, sku, name, category string
	price, cost, unit       string
	lots                    []seedLot
}

type seedLot struct {
	qty          int
	expiryMonths int
}

// NewSeeded crea un Store con catálogo y lotes de ejemplo para desarrollo local.
// Las fechas de vencimiento son relativas a now para que los lotes sean vendibles.
func NewSeeded(now time.Time) *Store {
	s := New()
	catalog := []seedProduct{
		{"prod-para-500", "PARA-500", "Paracetamol 500mg", "Analgésicos", "5.99", "2.50", "caja", []seedLot{{60, 2}, {90, 10}}},
		{"prod-amox-250", "AMOX-250", "Amoxicilina 250mg", "Antibióticos", "12.99", "6.75", "caja", []seedLot{{35, 4}, {50, 12}}},
		{"prod-vitc-1000", "VITC-1000", "Vitamina C 1000mg", "Suplementos", "8.50", "3.20", "frasco", []seedLot{{200, 18}}},
		{"prod-ibup-400", "IBUP-400", "Ibuprofeno 400mg", "Analgésicos", "6.99", "2.85", "blíster", []seedLot{{40, 1}, {80, 16}}},
		{"prod-lora-10", "LORA-10", "Loratadina 10mg", "Alergia", "9.99", "4.50", "caja", []seedLot{{75, 9}}},
	}

	received := now.AddDate(0, -1, 0)
	for _, p := range catalog {
		s.products[p.id] = entity.Product{
			ID:          p.id,
			SKU:         p.sku,
			Name:        p.name,
			Category:    p.category,
			Price:       decimal.RequireFromString(p.price),
			ReorderUnit: p.unit,
			Active:      true,
			CreatedAt:   received,
			UpdatedAt:   received,
		}
		for i, l := range p.lots {
			id := fmt.Sprintf("%s-L%d", p.sku, i+1)
			s.lots[id] = entity.Lot{
				ID:         id,
				ProductID:  p.id,
				BranchID:   SeedBranchID,
				BatchCode:  id,
				Quantity:   l.qty,
				UnitCost:   decimal.RequireFromString(p.cost),
				ExpiryDate: entity.DateOnly(now.AddDate(0, l.expiryMonths, 0)),
				ReceivedAt: received.AddDate(0, 0, i),
				UpdatedAt:  received,
			}
		}
	}
	return s
}
