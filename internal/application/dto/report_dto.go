package dto

import "github.com/shopspring/decimal"

// Formatos de salida del reporte. El formato solo le indica al cliente cómo presentarlo.
const (
	ReportFormatTable    = "table"
	ReportFormatDocument = "document"
)

// SalesReportRequest query de GET /api/reports/sales.
// Fechas en formato YYYY-MM-DD; EndDate incluye el día completo.
type SalesReportRequest struct {
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
	Format    string `query:"format"`
	BranchID  string `query:"branch_id"`
}

// ReportBreakdown total agrupado por producto, categoría o medio de pago.
type ReportBreakdown struct {
	Key       string          `json:"key"`
	Label     string          `json:"label"`
	Quantity  int             `json:"quantity"`
	SaleCount int             `json:"sale_count"`
	Revenue   decimal.Decimal `json:"revenue"`
	// Solo en el desglose por producto: costo promedio ponderado de los lotes vendidos.
	AverageUnitCost *decimal.Decimal `json:"average_unit_cost,omitempty"`
}

// SalesReportResponse resumen estructurado que cualquier renderizador puede consumir.
type SalesReportResponse struct {
	StartDate       string            `json:"start_date"`
	EndDate         string            `json:"end_date"`
	Format          string            `json:"format"`
	BranchID        string            `json:"branch_id,omitempty"`
	SaleCount       int               `json:"sale_count"`
	ItemsSold       int               `json:"items_sold"`
	TotalRevenue    decimal.Decimal   `json:"total_revenue"`
	TotalCost       decimal.Decimal   `json:"total_cost"`
	GrossMargin     decimal.Decimal   `json:"gross_margin"`
	AverageTicket   decimal.Decimal   `json:"average_ticket"`
	ByProduct       []ReportBreakdown `json:"by_product"`
	ByCategory      []ReportBreakdown `json:"by_category"`
	ByPaymentMethod []ReportBreakdown `json:"by_payment_method"`
}
