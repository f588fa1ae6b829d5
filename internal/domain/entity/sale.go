package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-pos/internal/domain"
)

// Estados de una venta persistida.
const (
	SaleStatusCompleted = "completed"
	SaleStatusPending   = "pending"
	SaleStatusCancelled = "cancelled"
)

// Medios de pago aceptados.
const (
	PaymentMethodCash      = "cash"
	PaymentMethodCard      = "card"
	PaymentMethodInsurance = "insurance"
)

// IsValidPaymentMethod valida el medio de pago.
func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodInsurance:
		return true
	}
	return false
}

// Sale es el registro inmutable de una venta confirmada.
// Solo cambia Status (completed -> cancelled).
type Sale struct {
	ID            string
	BranchID      string
	CustomerID    string
	CustomerName  string
	Items         []LineItem
	Total         decimal.Decimal
	PaymentMethod string
	Status        string
	StaffID       string
	Allocations   []Allocation // lotes que abastecieron cada línea
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewSaleFromDraft congela las líneas del borrador en una venta completada.
func NewSaleFromDraft(
	id string,
	draft *DraftSale,
	customer *Customer,
	paymentMethod string,
	allocations []Allocation,
	now time.Time,
) *Sale {
	items := draft.Items()
	s := &Sale{
		ID:            id,
		BranchID:      draft.BranchID,
		Items:         items,
		Total:         SumSubtotals(items),
		PaymentMethod: paymentMethod,
		Status:        SaleStatusCompleted,
		StaffID:       draft.StaffID,
		Allocations:   allocations,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if customer != nil {
		s.CustomerID = customer.ID
		s.CustomerName = customer.Name
	}
	return s
}

// Cost devuelve el costo de lo vendido según los lotes asignados.
func (s *Sale) Cost() decimal.Decimal {
	cost := decimal.Zero
	for _, a := range s.Allocations {
		cost = cost.Add(a.Cost())
	}
	return cost
}

// ItemCount devuelve las unidades vendidas.
func (s *Sale) ItemCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// Cancel anula una venta completada.
func (s *Sale) Cancel(now time.Time) error {
	if s.Status != SaleStatusCompleted {
		return domain.ErrInvalidTransition
	}
	s.Status = SaleStatusCancelled
	s.UpdatedAt = now
	return nil
}
