package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de la farmacia.
// Es dato de referencia de solo lectura durante una venta: el precio, el nombre
// y la categoría se copian en la línea de la venta al momento de agregarla.
type Product struct {
	ID          string
	SKU         string
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal // precio de venta vigente
	ReorderUnit string          // unidad de compra (caja, blíster, frasco)
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
