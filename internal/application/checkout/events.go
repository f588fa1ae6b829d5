package checkout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// Tipos de evento publicados.
const (
	EventSaleCompleted = "sale.completed"
	EventSaleCancelled = "sale.cancelled"
)

// SaleEvent es el mensaje publicado cuando una venta se confirma o se anula.
type SaleEvent struct {
	Type          string          `json:"type"`
	SaleID        string          `json:"sale_id"`
	BranchID      string          `json:"branch_id"`
	StaffID       string          `json:"staff_id"`
	CustomerID    string          `json:"customer_id,omitempty"`
	PaymentMethod string          `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	Items         []SaleEventItem `json:"items"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// SaleEventItem línea del evento.
type SaleEventItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func newSaleEvent(typ string, sale *entity.Sale, invoice *entity.Invoice, at time.Time) SaleEvent {
	ev := SaleEvent{
		Type:          typ,
		SaleID:        sale.ID,
		BranchID:      sale.BranchID,
		StaffID:       sale.StaffID,
		CustomerID:    sale.CustomerID,
		PaymentMethod: sale.PaymentMethod,
		Total:         sale.Total,
		Items:         make([]SaleEventItem, 0, len(sale.Items)),
		OccurredAt:    at,
	}
	if invoice != nil {
		ev.InvoiceNumber = invoice.Number
	}
	for _, it := range sale.Items {
		ev.Items = append(ev.Items, SaleEventItem{ProductID: it.ProductID, Quantity: it.Quantity, Subtotal: it.Subtotal()})
	}
	return ev
}
