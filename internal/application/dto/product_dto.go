package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// ProductResponse producto del catálogo.
type ProductResponse struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	ReorderUnit string          `json:"reorder_unit,omitempty"`
}

// LotResponse lote vendible de un producto.
type LotResponse struct {
	ID         string          `json:"id"`
	BatchCode  string          `json:"batch_code"`
	Quantity   int             `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	ExpiryDate string          `json:"expiry_date"`
	ReceivedAt time.Time       `json:"received_at"`
}

// AvailabilityResponse existencias vendibles de un producto en la sucursal.
type AvailabilityResponse struct {
	ProductID string        `json:"product_id"`
	BranchID  string        `json:"branch_id"`
	Available int           `json:"available"`
	Lots      []LotResponse `json:"lots"`
}

// FromProduct mapea el producto a la respuesta.
func FromProduct(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		ReorderUnit: p.ReorderUnit,
	}
}

// FromLots mapea lotes a la respuesta; la fecha de vencimiento va como YYYY-MM-DD.
func FromLots(lots []entity.Lot) []LotResponse {
	out := make([]LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, LotResponse{
			ID:         l.ID,
			BatchCode:  l.BatchCode,
			Quantity:   l.Quantity,
			UnitCost:   l.UnitCost,
			ExpiryDate: l.ExpiryDate.Format("2006-01-02"),
			ReceivedAt: l.ReceivedAt,
		})
	}
	return out
}
