package entity

import "time"

// Estados de la factura.
const (
	InvoiceStatusIssued          = "ISSUED"
	InvoiceStatusErrorGeneration = "ERROR_GENERATION"
)

// Invoice es la referencia de factura emitida para una venta confirmada.
// El documento (PDF) se genera bajo demanda a partir de la venta.
type Invoice struct {
	ID        string
	SaleID    string
	Number    string
	Status    string
	IssuedAt  time.Time
	CreatedAt time.Time
}
