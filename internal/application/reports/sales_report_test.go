package reports

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

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sale(id, status, method string, at time.Time, items ...entity.LineItem) *entity.Sale {
	s := &entity.Sale{
		ID: id, BranchID: "suc-1", Items: items, Total: entity.SumSubtotals(items),
		PaymentMethod: method, Status: status, CreatedAt: at,
	}
	for _, it := range items {
		s.Allocations = append(s.Allocations, entity.Allocation{
			BranchID: "suc-1", ProductID: it.ProductID, Reference: id,
			Lots: []entity.LotAllocation{{LotID: it.ProductID + "-L1", Quantity: it.Quantity, UnitCost: dec("1")}},
		})
	}
	return s
}

var (
	para = func(q int) entity.LineItem {
		return entity.LineItem{ProductID: "P", ProductName: "Paracetamol", Category: "Analgésicos", Quantity: q, UnitPrice: dec("5")}
	}
	ibu = func(q int) entity.LineItem {
		return entity.LineItem{ProductID: "I", ProductName: "Ibuprofeno", Category: "Analgésicos", Quantity: q, UnitPrice: dec("7")}
	}
	vitc = func(q int) entity.LineItem {
		return entity.LineItem{ProductID: "V", ProductName: "Vitamina C", Quantity: q, UnitPrice: dec("8.50")}
	}
)

func seed(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	ctx := context.Background()
	for _, sl := range []*entity.Sale{
		sale("antes", entity.SaleStatusCompleted, "cash", time.Date(2024, 11, 30, 23, 59, 59, 0, time.UTC), para(1)),
		sale("inicio", entity.SaleStatusCompleted, "cash", time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), para(2), ibu(1)),
		sale("medio", entity.SaleStatusCompleted, "card", time.Date(2024, 12, 2, 12, 0, 0, 0, time.UTC), vitc(2)),
		sale("anulada", entity.SaleStatusCancelled, "cash", time.Date(2024, 12, 2, 13, 0, 0, 0, time.UTC), para(10)),
		sale("pendiente", entity.SaleStatusPending, "cash", time.Date(2024, 12, 2, 14, 0, 0, 0, time.UTC), para(10)),
		sale("fin", entity.SaleStatusCompleted, "insurance", time.Date(2024, 12, 3, 23, 59, 59, 0, time.UTC), ibu(3)),
		sale("despues", entity.SaleStatusCompleted, "cash", time.Date(2024, 12, 4, 0, 0, 0, 0, time.UTC), para(1)),
	} {
		require.NoError(t, s.Sales().Save(ctx, sl))
	}
	return s
}

func TestGenerateReport_RangoInclusivoSoloCompletadas(t *testing.T) {
	uc := NewSalesReportUseCase(seed(t).Sales(), nil)

	r, err := uc.GenerateReport(context.Background(), dto.SalesReportRequest{StartDate: "2024-12-01", EndDate: "2024-12-03"})
	require.NoError(t, err)

	assert.Equal(t, 3, r.SaleCount)
	assert.Equal(t, 2+1+2+3, r.ItemsSold)
	// 17 + 17 + 21
	assert.True(t, r.TotalRevenue.Equal(dec("55")), r.TotalRevenue.String())
	assert.True(t, r.TotalCost.Equal(dec("8")))
	assert.True(t, r.GrossMargin.Equal(dec("47")))
	assert.True(t, r.AverageTicket.Equal(dec("18.33")))
	assert.Equal(t, dto.ReportFormatTable, r.Format)

	require.Len(t, r.ByProduct, 3)
	assert.Equal(t, "I", r.ByProduct[0].Key)
	assert.True(t, r.ByProduct[0].Revenue.Equal(dec("28")))
	assert.Equal(t, 2, r.ByProduct[0].SaleCount)

	require.Len(t, r.ByCategory, 2)
	assert.Equal(t, "Analgésicos", r.ByCategory[0].Key)
	assert.True(t, r.ByCategory[0].Revenue.Equal(dec("38")))
	assert.Equal(t, uncategorized, r.ByCategory[1].Key)

	require.Len(t, r.ByPaymentMethod, 3)
	assert.Equal(t, "insurance", r.ByPaymentMethod[0].Key)
}

func TestGenerateReport_UnSoloDia(t *testing.T) {
	uc := NewSalesReportUseCase(seed(t).Sales(), nil)
	r, err := uc.GenerateReport(context.Background(), dto.SalesReportRequest{StartDate: "2024-12-02", EndDate: "2024-12-02", Format: "document"})
	require.NoError(t, err)
	assert.Equal(t, 1, r.SaleCount)
	assert.Equal(t, dto.ReportFormatDocument, r.Format)
}

func TestGenerateReport_RangoVacio(t *testing.T) {
	uc := NewSalesReportUseCase(seed(t).Sales(), nil)
	r, err := uc.GenerateReport(context.Background(), dto.SalesReportRequest{StartDate: "2025-01-01", EndDate: "2025-01-31"})
	require.NoError(t, err)
	assert.Zero(t, r.SaleCount)
	assert.True(t, r.AverageTicket.IsZero())
	assert.Empty(t, r.ByProduct)
}

func TestGenerateReport_Errores(t *testing.T) {
	uc := NewSalesReportUseCase(memory.New().Sales(), nil)
	ctx := context.Background()

	_, err := uc.GenerateReport(ctx, dto.SalesReportRequest{StartDate: "2024-12-05", EndDate: "2024-12-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	_, err = uc.GenerateReport(ctx, dto.SalesReportRequest{StartDate: "05/12/2024", EndDate: "2024-12-06"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.GenerateReport(ctx, dto.SalesReportRequest{StartDate: "2024-12-01", EndDate: "2024-12-06", Format: "csv"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGenerateReport_ZonaHoraria(t *testing.T) {
	bogota := time.FixedZone("COT", -5*3600)
	uc := NewSalesReportUseCase(seed(t).Sales(), bogota)
	// 2024-12-03 23:59:59 UTC es 18:59 del 3 en Bogotá; 2024-12-04 00:00 UTC es 19:00 del 3.
	r, err := uc.GenerateReport(context.Background(), dto.SalesReportRequest{StartDate: "2024-12-03", EndDate: "2024-12-03"})
	require.NoError(t, err)
	assert.Equal(t, 2, r.SaleCount)
}

func TestAggregate_CostoPromedioPorProducto(t *testing.T) {
	s := sale("mixta", entity.SaleStatusCompleted, "cash", time.Now(), para(3))
	s.Allocations = []entity.Allocation{{
		BranchID: "suc-1", ProductID: "P", Reference: "mixta",
		Lots: []entity.LotAllocation{
			{LotID: "P-L1", Quantity: 1, UnitCost: dec("1")},
			{LotID: "P-L2", Quantity: 2, UnitCost: dec("2.50")},
		},
	}}

	r := Aggregate([]*entity.Sale{s})

	require.Len(t, r.ByProduct, 1)
	require.NotNil(t, r.ByProduct[0].AverageUnitCost)
	assert.Equal(t, "2", r.ByProduct[0].AverageUnitCost.String())
	assert.Equal(t, "6", r.TotalCost.String())
	assert.Nil(t, r.ByCategory[0].AverageUnitCost)
}
