package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// AddItemRequest body para POST /api/sales/draft/items.
type AddItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// SetQuantityRequest body para PUT /api/sales/draft/items/:productId.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CompleteSaleRequest body para POST /api/sales/draft/complete.
// Se envía CustomerID de un cliente existente o NewCustomer para crearlo en el cobro.
type CompleteSaleRequest struct {
	CustomerID    string                 `json:"customer_id,omitempty"`
	NewCustomer   *CreateCustomerRequest `json:"new_customer,omitempty"`
	CustomerName  string                 `json:"customer_name,omitempty"`
	PaymentMethod string                 `json:"payment_method"`
}

// CancelSaleRequest body opcional para POST /api/sales/:id/cancel.
type CancelSaleRequest struct {
	Reason string `json:"reason,omitempty"`
}

// LineItemResponse línea de venta o borrador.
type LineItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Category    string          `json:"category,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// DraftSaleResponse borrador activo del cajero.
type DraftSaleResponse struct {
	ID        string             `json:"id"`
	StaffID   string             `json:"staff_id"`
	BranchID  string             `json:"branch_id"`
	Status    string             `json:"status"`
	Items     []LineItemResponse `json:"items"`
	Total     decimal.Decimal    `json:"total"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// LotAllocationResponse lote usado para una línea.
type LotAllocationResponse struct {
	ProductID string `json:"product_id"`
	LotID     string `json:"lot_id"`
	BatchCode string `json:"batch_code"`
	Quantity  int    `json:"quantity"`
}

// SaleResponse venta confirmada.
type SaleResponse struct {
	ID            string                  `json:"id"`
	BranchID      string                  `json:"branch_id"`
	CustomerID    string                  `json:"customer_id,omitempty"`
	CustomerName  string                  `json:"customer_name"`
	Items         []LineItemResponse      `json:"items"`
	Total         decimal.Decimal         `json:"total"`
	PaymentMethod string                  `json:"payment_method"`
	Status        string                  `json:"status"`
	StaffID       string                  `json:"staff_id"`
	Lots          []LotAllocationResponse `json:"lots,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
}

// CompleteSaleResponse resultado del cobro: la venta es definitiva aunque la factura falle.
type CompleteSaleResponse struct {
	Sale    *SaleResponse    `json:"sale"`
	Invoice *InvoiceResponse `json:"invoice"`
}

func fromItems(items []entity.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, LineItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Category:    it.Category,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal(),
		})
	}
	return out
}

// FromDraft mapea el borrador a la respuesta.
func FromDraft(d *entity.DraftSale) *DraftSaleResponse {
	if d == nil {
		return nil
	}
	return &DraftSaleResponse{
		ID:        d.ID,
		StaffID:   d.StaffID,
		BranchID:  d.BranchID,
		Status:    d.Status,
		Items:     fromItems(d.Items()),
		Total:     d.Total(),
		UpdatedAt: d.UpdatedAt,
	}
}

// FromSale mapea la venta a la respuesta.
func FromSale(s *entity.Sale) *SaleResponse {
	if s == nil {
		return nil
	}
	out := &SaleResponse{
		ID:            s.ID,
		BranchID:      s.BranchID,
		CustomerID:    s.CustomerID,
		CustomerName:  s.CustomerName,
		Items:         fromItems(s.Items),
		Total:         s.Total,
		PaymentMethod: s.PaymentMethod,
		Status:        s.Status,
		StaffID:       s.StaffID,
		CreatedAt:     s.CreatedAt,
	}
	for _, a := range s.Allocations {
		for _, l := range a.Lots {
			out.Lots = append(out.Lots, LotAllocationResponse{
				ProductID: a.ProductID,
				LotID:     l.LotID,
				BatchCode: l.BatchCode,
				Quantity:  l.Quantity,
			})
		}
	}
	return out
}
