package reports

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/inventory"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

const dateLayout = "2006-01-02"

// Sin categoría en el catálogo.
const uncategorized = "Sin categoría"

// SalesReportUseCase resume las ventas completadas de un rango de fechas cerrado.
// Es una lectura pura: no modifica ventas ni inventario.
type SalesReportUseCase struct {
	saleRepo repository.SaleRepository
	loc      *time.Location
}

// NewSalesReportUseCase construye el caso de uso. loc define en qué zona se interpretan
// las fechas del rango (nil = UTC).
func NewSalesReportUseCase(saleRepo repository.SaleRepository, loc *time.Location) *SalesReportUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &SalesReportUseCase{saleRepo: saleRepo, loc: loc}
}

// GenerateReport devuelve el resumen de [StartDate, EndDate], ambos días completos.
func (uc *SalesReportUseCase) GenerateReport(ctx context.Context, in dto.SalesReportRequest) (*dto.SalesReportResponse, error) {
	from, to, err := uc.parseRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	format := strings.ToLower(strings.TrimSpace(in.Format))
	switch format {
	case "":
		format = dto.ReportFormatTable
	case dto.ReportFormatTable, dto.ReportFormatDocument:
	default:
		return nil, fmt.Errorf("%w: formato %q", domain.ErrInvalidInput, in.Format)
	}

	// El repositorio incluye ambos extremos; to es el último instante del día final.
	sales, err := uc.saleRepo.ListByDateRange(ctx, in.BranchID, from, to)
	if err != nil {
		return nil, fmt.Errorf("reportes: listar ventas: %w", err)
	}

	resp := Aggregate(sales)
	resp.StartDate = in.StartDate
	resp.EndDate = in.EndDate
	resp.Format = format
	resp.BranchID = in.BranchID
	return resp, nil
}

func (uc *SalesReportUseCase) parseRange(start, end string) (time.Time, time.Time, error) {
	from, err := time.ParseInLocation(dateLayout, strings.TrimSpace(start), uc.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date debe ser YYYY-MM-DD", domain.ErrInvalidInput)
	}
	endDay, err := time.ParseInLocation(dateLayout, strings.TrimSpace(end), uc.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date debe ser YYYY-MM-DD", domain.ErrInvalidInput)
	}
	if from.After(endDay) {
		return time.Time{}, time.Time{}, domain.ErrInvalidRange
	}
	return from, endDay.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}

type bucket struct {
	label    string
	quantity int
	revenue  decimal.Decimal
	sales    map[string]struct{}
}

type buckets map[string]*bucket

func (b buckets) add(key, label, saleID string, qty int, amount decimal.Decimal) {
	bk, ok := b[key]
	if !ok {
		bk = &bucket{label: label, revenue: decimal.Zero, sales: make(map[string]struct{})}
		b[key] = bk
	}
	bk.quantity += qty
	bk.revenue = bk.revenue.Add(amount)
	bk.sales[saleID] = struct{}{}
}

// sorted ordena por ingreso descendente y luego por clave.
func (b buckets) sorted() []dto.ReportBreakdown {
	out := make([]dto.ReportBreakdown, 0, len(b))
	for key, bk := range b {
		out = append(out, dto.ReportBreakdown{
			Key:       key,
			Label:     bk.label,
			Quantity:  bk.quantity,
			SaleCount: len(bk.sales),
			Revenue:   bk.revenue,
		})
	}
	slices.SortFunc(out, func(x, y dto.ReportBreakdown) int {
		if c := y.Revenue.Cmp(x.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(x.Key, y.Key)
	})
	return out
}

// Aggregate resume las ventas completadas; ignora anuladas y pendientes.
func Aggregate(sales []*entity.Sale) *dto.SalesReportResponse {
	resp := &dto.SalesReportResponse{
		TotalRevenue:  decimal.Zero,
		TotalCost:     decimal.Zero,
		GrossMargin:   decimal.Zero,
		AverageTicket: decimal.Zero,
	}
	byProduct := buckets{}
	byCategory := buckets{}
	byPayment := buckets{}
	soldLots := make(map[string][]entity.LotAllocation)

	for _, s := range sales {
		if s == nil || s.Status != entity.SaleStatusCompleted {
			continue
		}
		resp.SaleCount++
		resp.TotalRevenue = resp.TotalRevenue.Add(s.Total)
		resp.TotalCost = resp.TotalCost.Add(s.Cost())
		resp.ItemsSold += s.ItemCount()
		byPayment.add(s.PaymentMethod, s.PaymentMethod, s.ID, s.ItemCount(), s.Total)

		for _, it := range s.Items {
			sub := it.Subtotal()
			byProduct.add(it.ProductID, it.ProductName, s.ID, it.Quantity, sub)
			category := it.Category
			if category == "" {
				category = uncategorized
			}
			byCategory.add(category, category, s.ID, it.Quantity, sub)
		}
		for _, a := range s.Allocations {
			soldLots[a.ProductID] = append(soldLots[a.ProductID], a.Lots...)
		}
	}

	resp.GrossMargin = resp.TotalRevenue.Sub(resp.TotalCost)
	if resp.SaleCount > 0 {
		resp.AverageTicket = resp.TotalRevenue.Div(decimal.NewFromInt(int64(resp.SaleCount))).Round(2)
	}
	resp.ByProduct = byProduct.sorted()
	for i := range resp.ByProduct {
		avg := inventory.CostCalculator(soldLots[resp.ByProduct[i].Key]).Round(2)
		resp.ByProduct[i].AverageUnitCost = &avg
	}
	resp.ByCategory = byCategory.sorted()
	resp.ByPaymentMethod = byPayment.sorted()
	return resp
}
