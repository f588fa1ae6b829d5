package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-pos/internal/domain"
)

// Estados del borrador de venta (carrito).
const (
	DraftStatusEmpty            = "EMPTY" // sin borrador activo para el usuario
	DraftStatusBuilding         = "BUILDING"
	DraftStatusAwaitingCheckout = "AWAITING_CHECKOUT"
	DraftStatusCommitted        = "COMMITTED"
	DraftStatusCancelled        = "CANCELLED"
)

// LineItem es una línea de venta con precio congelado al momento de agregarla.
type LineItem struct {
	ProductID   string
	ProductName string
	Category    string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Subtotal siempre se calcula como Quantity × UnitPrice.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// SumSubtotals devuelve Σ subtotales de las líneas.
func SumSubtotals(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// DraftSale es la venta en construcción de un único usuario (cajero).
// Vive solo en memoria; nunca es visible para otras sesiones.
// Invariante: Total() == Σ Subtotal() de sus líneas después de cada operación.
type DraftSale struct {
	ID        string
	StaffID   string
	BranchID  string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time

	items []LineItem
	total decimal.Decimal
}

// NewDraftSale crea un borrador vacío en estado BUILDING.
func NewDraftSale(id, staffID, branchID string, now time.Time) *DraftSale {
	return &DraftSale{
		ID:        id,
		StaffID:   staffID,
		BranchID:  branchID,
		Status:    DraftStatusBuilding,
		CreatedAt: now,
		UpdatedAt: now,
		total:     decimal.Zero,
	}
}

// Items devuelve una copia de las líneas en orden de inserción.
func (d *DraftSale) Items() []LineItem {
	out := make([]LineItem, len(d.items))
	copy(out, d.items)
	return out
}

// Total devuelve el total acumulado.
func (d *DraftSale) Total() decimal.Decimal { return d.total }

// IsEmpty indica si el borrador no tiene líneas.
func (d *DraftSale) IsEmpty() bool { return len(d.items) == 0 }

// IsTerminal indica si el borrador ya fue confirmado o cancelado.
func (d *DraftSale) IsTerminal() bool {
	return d.Status == DraftStatusCommitted || d.Status == DraftStatusCancelled
}

// QuantityOf devuelve la cantidad actual de un producto (0 si no está).
func (d *DraftSale) QuantityOf(productID string) int {
	if i := d.indexOf(productID); i >= 0 {
		return d.items[i].Quantity
	}
	return 0
}

// AddItem agrega un producto o suma la cantidad a la línea existente.
// available es el stock vendible actual; la cantidad combinada no puede superarlo.
func (d *DraftSale) AddItem(product *Product, quantity, available int, now time.Time) error {
	if err := d.requireBuilding(); err != nil {
		return err
	}
	if product == nil || quantity <= 0 {
		return domain.ErrInvalidInput
	}
	i := d.indexOf(product.ID)
	merged := quantity
	if i >= 0 {
		merged += d.items[i].Quantity
	}
	if merged > available {
		return domain.NewInsufficientStock(product.ID, merged, available)
	}
	if i >= 0 {
		d.items[i].Quantity = merged
	} else {
		d.items = append(d.items, LineItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Category:    product.Category,
			Quantity:    quantity,
			UnitPrice:   product.Price,
		})
	}
	d.touch(now)
	return nil
}

// RemoveItem elimina la línea del producto; si no existe no hace nada.
func (d *DraftSale) RemoveItem(productID string, now time.Time) error {
	if err := d.requireBuilding(); err != nil {
		return err
	}
	i := d.indexOf(productID)
	if i < 0 {
		return nil
	}
	d.items = append(d.items[:i], d.items[i+1:]...)
	d.touch(now)
	return nil
}

// SetQuantity reemplaza la cantidad de una línea existente.
// Cantidad 0 es entrada inválida: para quitar la línea se usa RemoveItem.
func (d *DraftSale) SetQuantity(productID string, quantity, available int, now time.Time) error {
	if err := d.requireBuilding(); err != nil {
		return err
	}
	if quantity <= 0 {
		return domain.ErrInvalidInput
	}
	i := d.indexOf(productID)
	if i < 0 {
		return domain.ErrNotFound
	}
	if quantity > available {
		return domain.NewInsufficientStock(productID, quantity, available)
	}
	d.items[i].Quantity = quantity
	d.touch(now)
	return nil
}

// ProceedToCheckout pasa de BUILDING a AWAITING_CHECKOUT si hay al menos una línea.
func (d *DraftSale) ProceedToCheckout(now time.Time) error {
	if d.Status != DraftStatusBuilding {
		return domain.ErrInvalidTransition
	}
	if d.IsEmpty() {
		return domain.ErrEmptyCart
	}
	d.Status = DraftStatusAwaitingCheckout
	d.UpdatedAt = now
	return nil
}

// Reopen regresa de AWAITING_CHECKOUT a BUILDING para corregir cantidades.
func (d *DraftSale) Reopen(now time.Time) error {
	if d.Status != DraftStatusAwaitingCheckout {
		return domain.ErrInvalidTransition
	}
	d.Status = DraftStatusBuilding
	d.UpdatedAt = now
	return nil
}

// Cancel descarta el borrador desde cualquier estado no terminal.
func (d *DraftSale) Cancel(now time.Time) error {
	if d.IsTerminal() {
		return domain.ErrInvalidTransition
	}
	d.Status = DraftStatusCancelled
	d.UpdatedAt = now
	return nil
}

// MarkCommitted deja el borrador inerte después de confirmar la venta.
func (d *DraftSale) MarkCommitted(now time.Time) error {
	if d.Status != DraftStatusAwaitingCheckout {
		return domain.ErrInvalidTransition
	}
	d.Status = DraftStatusCommitted
	d.UpdatedAt = now
	return nil
}

// Clone devuelve una copia independiente del borrador.
func (d *DraftSale) Clone() *DraftSale {
	c := *d
	c.items = d.Items()
	return &c
}

func (d *DraftSale) requireBuilding() error {
	if d.Status != DraftStatusBuilding {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (d *DraftSale) indexOf(productID string) int {
	for i := range d.items {
		if d.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// touch recalcula el total desde las líneas.
func (d *DraftSale) touch(now time.Time) {
	d.total = SumSubtotals(d.items)
	d.UpdatedAt = now
}
