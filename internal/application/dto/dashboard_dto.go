package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// CategorySalesDTO monto vendido en el mes por categoría.
type CategorySalesDTO struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// SaleSummaryResponse fila del historial de ventas (sin líneas ni lotes).
type SaleSummaryResponse struct {
	ID            string          `json:"id"`
	BranchID      string          `json:"branch_id"`
	CustomerName  string          `json:"customer_name"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"item_count"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	StaffID       string          `json:"staff_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// DashboardSummaryDTO tarjetas y widgets del panel principal.
// Las cifras de ventas solo cuentan ventas completadas; el inventario, lotes vendibles.
type DashboardSummaryDTO struct {
	BranchID              string                `json:"branch_id,omitempty"`
	TodaySales            int                   `json:"today_sales"`
	TodayRevenue          decimal.Decimal       `json:"today_revenue"`
	TodayMargin           decimal.Decimal       `json:"today_margin"`
	MonthlySales          int                   `json:"monthly_sales"`
	MonthlyRevenue        decimal.Decimal       `json:"monthly_revenue"`
	MonthlyMargin         decimal.Decimal       `json:"monthly_margin"`
	LowStockCount         int                   `json:"low_stock_count"`
	ExpiringProductsCount int                   `json:"expiring_products_count"`
	InventoryValue        decimal.Decimal       `json:"inventory_value"`
	RecentSales           []SaleSummaryResponse `json:"recent_sales"`
	SalesByCategory       []CategorySalesDTO    `json:"sales_by_category"`
	DateLabel             string                `json:"date_label"`
}

// SalesHistoryRequest query de GET /api/sales.
// Sin fechas se toman los últimos 30 días hasta hoy.
type SalesHistoryRequest struct {
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
	Status    string `query:"status"`
	BranchID  string `query:"branch_id"`
	Limit     int    `query:"limit"`
	Offset    int    `query:"offset"`
}

// SalesHistoryResponse página del historial, de la más reciente a la más antigua.
type SalesHistoryResponse struct {
	Items  []SaleSummaryResponse `json:"items"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// ToSaleSummary mapea la venta a una fila del historial.
func ToSaleSummary(s *entity.Sale) SaleSummaryResponse {
	return SaleSummaryResponse{
		ID:            s.ID,
		BranchID:      s.BranchID,
		CustomerName:  s.CustomerName,
		Total:         s.Total,
		ItemCount:     s.ItemCount(),
		PaymentMethod: s.PaymentMethod,
		Status:        s.Status,
		StaffID:       s.StaffID,
		CreatedAt:     s.CreatedAt,
	}
}
