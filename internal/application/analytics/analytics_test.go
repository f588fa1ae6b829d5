package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/infrastructure/memory"
)

var ahora = time.Date(2024, 11, 20, 15, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func lot(id, product, branch string, qty int, cost, expiry string) entity.Lot {
	return entity.Lot{
		ID: id, ProductID: product, BranchID: branch, BatchCode: id,
		Quantity: qty, UnitCost: dec(cost), ExpiryDate: day(expiry), ReceivedAt: day("2024-01-01"),
	}
}

func sale(id, branch, status, category string, at time.Time, qty int, price, cost string) *entity.Sale {
	items := []entity.LineItem{{ProductID: id + "-p", ProductName: id, Category: category, Quantity: qty, UnitPrice: dec(price)}}
	return &entity.Sale{
		ID: id, BranchID: branch, CustomerName: "Cliente " + id, Items: items, Total: entity.SumSubtotals(items),
		PaymentMethod: entity.PaymentMethodCash, Status: status, StaffID: "cajero-1", CreatedAt: at,
		Allocations: []entity.Allocation{{
			BranchID: branch, ProductID: id + "-p", Reference: id,
			Lots: []entity.LotAllocation{{LotID: id + "-L", Quantity: qty, UnitCost: dec(cost)}},
		}},
	}
}

func seed(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	for _, l := range []entity.Lot{
		lot("A1", "A", "suc-1", 5, "2", "2024-12-01"),   // bajo y por vencer
		lot("B1", "B", "suc-1", 50, "1", "2025-06-01"),  // normal
		lot("C1", "C", "suc-1", 0, "4", "2025-06-01"),   // agotado
		lot("D1", "D", "suc-1", 8, "3", "2024-11-19"),   // vencido ayer
		lot("E1", "E", "suc-2", 1, "100", "2024-11-25"), // otra sucursal
	} {
		s.PutLot(l)
	}
	ctx := context.Background()
	for _, sl := range []*entity.Sale{
		sale("hoy", "suc-1", entity.SaleStatusCompleted, "Analgésicos", time.Date(2024, 11, 20, 10, 0, 0, 0, time.UTC), 2, "5", "1"),
		sale("mes", "suc-1", entity.SaleStatusCompleted, "Suplementos", time.Date(2024, 11, 5, 9, 0, 0, 0, time.UTC), 1, "8.50", "3"),
		sale("anulada", "suc-1", entity.SaleStatusCancelled, "Analgésicos", time.Date(2024, 11, 20, 11, 0, 0, 0, time.UTC), 10, "5", "1"),
		sale("octubre", "suc-1", entity.SaleStatusCompleted, "Analgésicos", time.Date(2024, 10, 25, 9, 0, 0, 0, time.UTC), 1, "5", "1"),
		sale("otra", "suc-2", entity.SaleStatusCompleted, "Analgésicos", time.Date(2024, 11, 20, 9, 0, 0, 0, time.UTC), 3, "5", "1"),
	} {
		require.NoError(t, s.Sales().Save(ctx, sl))
	}
	return s
}

func TestGetSummary_VentasEInventarioDeLaSucursal(t *testing.T) {
	s := seed(t)
	uc := NewDashboardUseCase(s.Sales(), s.Lots(), nil, DashboardOptions{}).WithClock(func() time.Time { return ahora })

	out, err := uc.GetSummary(context.Background(), "suc-1")
	require.NoError(t, err)

	assert.Equal(t, 1, out.TodaySales)
	assert.True(t, out.TodayRevenue.Equal(dec("10")), out.TodayRevenue.String())
	assert.True(t, out.TodayMargin.Equal(dec("8")))
	assert.Equal(t, 2, out.MonthlySales)
	assert.True(t, out.MonthlyRevenue.Equal(dec("18.50")), out.MonthlyRevenue.String())
	assert.True(t, out.MonthlyMargin.Equal(dec("13.50")))

	// A (5 ≤ 10), C (0) y D (solo vencido) están bajos.
	assert.Equal(t, 3, out.LowStockCount)
	assert.Equal(t, 1, out.ExpiringProductsCount)
	// 5×2 + 50×1; ni lo vencido ni lo agotado suma.
	assert.True(t, out.InventoryValue.Equal(dec("60")), out.InventoryValue.String())

	require.Len(t, out.SalesByCategory, 2)
	assert.Equal(t, "Analgésicos", out.SalesByCategory[0].Category)
	assert.True(t, out.SalesByCategory[0].Amount.Equal(dec("10")))
	assert.Equal(t, "Suplementos", out.SalesByCategory[1].Category)

	require.Len(t, out.RecentSales, 4)
	assert.Equal(t, "anulada", out.RecentSales[0].ID)
	assert.Equal(t, entity.SaleStatusCancelled, out.RecentSales[0].Status)
	assert.Equal(t, "octubre", out.RecentSales[3].ID)
	assert.Equal(t, "Noviembre 2024", out.DateLabel)
}

func TestGetSummary_UmbralesConfigurables(t *testing.T) {
	s := seed(t)
	uc := NewDashboardUseCase(s.Sales(), s.Lots(), nil, DashboardOptions{
		LowStockThreshold: 4, ExpiryWarningDays: 5, RecentSales: 2,
	}).WithClock(func() time.Time { return ahora })

	out, err := uc.GetSummary(context.Background(), "suc-1")
	require.NoError(t, err)
	assert.Equal(t, 2, out.LowStockCount)
	assert.Zero(t, out.ExpiringProductsCount)
	assert.Len(t, out.RecentSales, 2)
}

func TestGetSummary_TodasLasSucursales(t *testing.T) {
	s := seed(t)
	uc := NewDashboardUseCase(s.Sales(), s.Lots(), nil, DashboardOptions{}).WithClock(func() time.Time { return ahora })

	out, err := uc.GetSummary(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, out.TodaySales)
	assert.Equal(t, 4, out.LowStockCount)
	assert.Equal(t, 2, out.ExpiringProductsCount)
	assert.True(t, out.InventoryValue.Equal(dec("160")))
}

func TestGetSummary_DiaSegunZonaDeLaFarmacia(t *testing.T) {
	bogota := time.FixedZone("COT", -5*3600)
	s := seed(t)
	// 02:00 UTC del 21 todavía es el 20 en Bogotá.
	uc := NewDashboardUseCase(s.Sales(), s.Lots(), bogota, DashboardOptions{}).
		WithClock(func() time.Time { return time.Date(2024, 11, 21, 2, 0, 0, 0, time.UTC) })

	out, err := uc.GetSummary(context.Background(), "suc-1")
	require.NoError(t, err)
	assert.Equal(t, 1, out.TodaySales)
}

func TestListSales_PaginaDeLaMasRecienteALaMasAntigua(t *testing.T) {
	uc := NewSalesHistoryUseCase(seed(t).Sales(), nil).WithClock(func() time.Time { return ahora })
	ctx := context.Background()

	page, err := uc.List(ctx, dto.SalesHistoryRequest{BranchID: "suc-1", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "anulada", page.Items[0].ID)
	assert.Equal(t, "hoy", page.Items[1].ID)
	assert.Equal(t, "Cliente hoy", page.Items[1].CustomerName)
	assert.Equal(t, 2, page.Items[1].ItemCount)

	page, err = uc.List(ctx, dto.SalesHistoryRequest{BranchID: "suc-1", Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "mes", page.Items[0].ID)
	assert.Equal(t, "octubre", page.Items[1].ID)

	page, err = uc.List(ctx, dto.SalesHistoryRequest{BranchID: "suc-1", Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, defaultHistorySize, page.Limit)
}

func TestListSales_FiltrosDeFechaYEstado(t *testing.T) {
	uc := NewSalesHistoryUseCase(seed(t).Sales(), nil).WithClock(func() time.Time { return ahora })
	ctx := context.Background()

	page, err := uc.List(ctx, dto.SalesHistoryRequest{StartDate: "2024-11-01", EndDate: "2024-11-30", Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total) // hoy, mes y otra

	page, err = uc.List(ctx, dto.SalesHistoryRequest{BranchID: "suc-1", StartDate: "2024-11-20", EndDate: "2024-11-20", Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, maxHistorySize, page.Limit)
}

func TestListSales_Errores(t *testing.T) {
	uc := NewSalesHistoryUseCase(memory.New().Sales(), nil)
	ctx := context.Background()

	_, err := uc.List(ctx, dto.SalesHistoryRequest{StartDate: "2024-12-05", EndDate: "2024-12-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	_, err = uc.List(ctx, dto.SalesHistoryRequest{EndDate: "01/12/2024"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.List(ctx, dto.SalesHistoryRequest{Status: "borrada"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.List(ctx, dto.SalesHistoryRequest{Offset: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
