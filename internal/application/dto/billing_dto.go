package dto

import (
	"time"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// CreateCustomerRequest body para POST /api/customers y cliente nuevo en el cobro.
type CreateCustomerRequest struct {
	ExternalKey string `json:"external_key"` // documento o NIT
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID          string `json:"id"`
	ExternalKey string `json:"external_key"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// InvoiceResponse referencia de factura de una venta.
type InvoiceResponse struct {
	ID       string     `json:"id,omitempty"`
	SaleID   string     `json:"sale_id"`
	Number   string     `json:"number,omitempty"`
	Status   string     `json:"status"`
	IssuedAt *time.Time `json:"issued_at,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// FromCustomer mapea la entidad a la respuesta.
func FromCustomer(c *entity.Customer) *CustomerResponse {
	if c == nil {
		return nil
	}
	return &CustomerResponse{
		ID:          c.ID,
		ExternalKey: c.ExternalKey,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
	}
}

// FromInvoice mapea la factura; issuedAt se omite si no se emitió.
func FromInvoice(inv *entity.Invoice) *InvoiceResponse {
	if inv == nil {
		return nil
	}
	out := &InvoiceResponse{ID: inv.ID, SaleID: inv.SaleID, Number: inv.Number, Status: inv.Status}
	if !inv.IssuedAt.IsZero() {
		issued := inv.IssuedAt
		out.IssuedAt = &issued
	}
	return out
}
