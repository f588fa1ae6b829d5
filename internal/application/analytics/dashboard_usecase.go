// Package analytics contiene el panel principal y el historial de ventas.
package analytics

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/reports"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/inventory"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

// Valores por defecto del panel.
const (
	DefaultLowStockThreshold = 10
	DefaultExpiryWarningDays = 30
	DefaultRecentSales       = 5
	recentWindowDays         = 30
)

// DashboardOptions umbrales del panel. Los valores <= 0 toman el defecto.
type DashboardOptions struct {
	LowStockThreshold int // un producto con esta cantidad vendible o menos está bajo
	ExpiryWarningDays int // días hacia adelante para "por vencer"
	RecentSales       int
}

func (o DashboardOptions) withDefaults() DashboardOptions {
	if o.LowStockThreshold <= 0 {
		o.LowStockThreshold = DefaultLowStockThreshold
	}
	if o.ExpiryWarningDays <= 0 {
		o.ExpiryWarningDays = DefaultExpiryWarningDays
	}
	if o.RecentSales <= 0 {
		o.RecentSales = DefaultRecentSales
	}
	return o
}

// DashboardUseCase arma el resumen del día, del mes y del inventario de una sucursal.
// Solo lee: ventas desde SaleRepository y existencias desde LotRepository.
type DashboardUseCase struct {
	saleRepo repository.SaleRepository
	lotRepo  repository.LotRepository
	loc      *time.Location
	opts     DashboardOptions
	now      func() time.Time
}

// NewDashboardUseCase construye el caso de uso. loc nil = UTC.
func NewDashboardUseCase(saleRepo repository.SaleRepository, lotRepo repository.LotRepository, loc *time.Location, opts DashboardOptions) *DashboardUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardUseCase{
		saleRepo: saleRepo,
		lotRepo:  lotRepo,
		loc:      loc,
		opts:     opts.withDefaults(),
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// GetSummary construye el panel de la sucursal (vacío = todas).
//
// Tres lecturas en paralelo:
//  1. ventas del mes en curso  -> hoy, mes y ventas por categoría
//  2. ventas de los últimos 30 días -> ventas recientes
//  3. lotes de la sucursal     -> bajo stock, por vencer y valor del inventario
func (uc *DashboardUseCase) GetSummary(ctx context.Context, branchID string) (*dto.DashboardSummaryDTO, error) {
	now := uc.now().In(uc.loc)

	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, uc.loc)
	todayEnd := todayStart.AddDate(0, 0, 1).Add(-time.Nanosecond)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, uc.loc)
	recentStart := todayStart.AddDate(0, 0, -recentWindowDays)

	type salesResult struct {
		sales []*entity.Sale
		err   error
	}
	type lotsResult struct {
		lots []entity.Lot
		err  error
	}

	monthCh := make(chan salesResult, 1)
	recentCh := make(chan salesResult, 1)
	lotsCh := make(chan lotsResult, 1)

	go func() {
		sales, err := uc.saleRepo.ListByDateRange(ctx, branchID, monthStart, todayEnd)
		monthCh <- salesResult{sales, err}
	}()
	go func() {
		sales, err := uc.saleRepo.ListByDateRange(ctx, branchID, recentStart, todayEnd)
		recentCh <- salesResult{sales, err}
	}()
	go func() {
		lots, err := uc.lotRepo.ListByBranch(ctx, branchID)
		lotsCh <- lotsResult{lots, err}
	}()

	month := <-monthCh
	recent := <-recentCh
	lots := <-lotsCh

	if month.err != nil {
		return nil, fmt.Errorf("dashboard: ventas del mes: %w", month.err)
	}
	if recent.err != nil {
		return nil, fmt.Errorf("dashboard: ventas recientes: %w", recent.err)
	}
	if lots.err != nil {
		return nil, fmt.Errorf("dashboard: lotes: %w", lots.err)
	}

	todaySales := make([]*entity.Sale, 0)
	for _, s := range month.sales {
		if !s.CreatedAt.Before(todayStart) {
			todaySales = append(todaySales, s)
		}
	}
	todayAgg := reports.Aggregate(todaySales)
	monthAgg := reports.Aggregate(month.sales)

	out := &dto.DashboardSummaryDTO{
		BranchID:        branchID,
		TodaySales:      todayAgg.SaleCount,
		TodayRevenue:    todayAgg.TotalRevenue.Round(2),
		TodayMargin:     todayAgg.GrossMargin.Round(2),
		MonthlySales:    monthAgg.SaleCount,
		MonthlyRevenue:  monthAgg.TotalRevenue.Round(2),
		MonthlyMargin:   monthAgg.GrossMargin.Round(2),
		RecentSales:     uc.recentSales(recent.sales),
		SalesByCategory: make([]dto.CategorySalesDTO, 0, len(monthAgg.ByCategory)),
		DateLabel:       monthLabel(now),
	}
	for _, c := range monthAgg.ByCategory {
		out.SalesByCategory = append(out.SalesByCategory, dto.CategorySalesDTO{Category: c.Label, Amount: c.Revenue.Round(2)})
	}

	st := uc.stockStatus(lots.lots, entity.LocalDate(now, uc.loc))
	out.LowStockCount = st.lowStock
	out.ExpiringProductsCount = st.expiring
	out.InventoryValue = st.value.Round(2)
	return out, nil
}

// recentSales devuelve las últimas N ventas, la más reciente primero, en cualquier estado.
func (uc *DashboardUseCase) recentSales(sales []*entity.Sale) []dto.SaleSummaryResponse {
	sorted := slices.Clone(sales)
	slices.SortFunc(sorted, newestFirst)
	if len(sorted) > uc.opts.RecentSales {
		sorted = sorted[:uc.opts.RecentSales]
	}
	out := make([]dto.SaleSummaryResponse, 0, len(sorted))
	for _, s := range sorted {
		out = append(out, dto.ToSaleSummary(s))
	}
	return out
}

type stockStatus struct {
	lowStock int
	expiring int
	value    decimal.Decimal
}

// stockStatus resume los lotes de la sucursal al día today.
// Un producto con lotes pero sin unidades vendibles cuenta como bajo stock.
func (uc *DashboardUseCase) stockStatus(lots []entity.Lot, today time.Time) stockStatus {
	st := stockStatus{value: decimal.Zero}
	warnUntil := today.AddDate(0, 0, uc.opts.ExpiryWarningDays)

	sellableByProduct := make(map[string]int)
	expiring := make(map[string]struct{})
	for _, l := range lots {
		if _, ok := sellableByProduct[l.ProductID]; !ok {
			sellableByProduct[l.ProductID] = 0
		}
	}
	for _, l := range inventory.SellableLots(lots, today) {
		sellableByProduct[l.ProductID] += l.Quantity
		st.value = st.value.Add(l.UnitCost.Mul(decimal.NewFromInt(int64(l.Quantity))))
		if !entity.DateOnly(l.ExpiryDate).After(warnUntil) {
			expiring[l.ProductID] = struct{}{}
		}
	}
	for _, qty := range sellableByProduct {
		if qty <= uc.opts.LowStockThreshold {
			st.lowStock++
		}
	}
	st.expiring = len(expiring)
	return st
}

func newestFirst(a, b *entity.Sale) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
