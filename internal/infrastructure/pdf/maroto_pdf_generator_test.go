package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/jhoicas/farmacia-pos/internal/application/billing"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":        "0",
		"950":      "950",
		"25000":    "25.000",
		"1000000":  "1.000.000",
		"1234.5":   "1.234,50",
		"-4500.25": "-4.500,25",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestBatchesByProduct(t *testing.T) {
	got := batchesByProduct([]entity.Allocation{
		{ProductID: "P", Lots: []entity.LotAllocation{{LotID: "l1", BatchCode: "B-01"}, {LotID: "l2"}}},
	})
	assert.Equal(t, "B-01, l2", got["P"])
}

func TestGenerateInvoicePDF_GeneraDocumento(t *testing.T) {
	now := time.Date(2025, 2, 10, 9, 30, 0, 0, time.UTC)
	items := []entity.LineItem{{ProductID: "P", ProductName: "Amoxicilina 500mg x 21", Quantity: 2, UnitPrice: decimal.NewFromInt(18500)}}
	doc := appbilling.SaleDocument{
		Sale: &entity.Sale{
			ID: "venta-1", Items: items, Total: entity.SumSubtotals(items), PaymentMethod: entity.PaymentMethodCard,
			Status: entity.SaleStatusCompleted, CreatedAt: now,
			Allocations: []entity.Allocation{{ProductID: "P", Lots: []entity.LotAllocation{{LotID: "L1", BatchCode: "AMX-01", Quantity: 2}}}},
		},
		Invoice:  &entity.Invoice{Number: "FV-000001", Status: entity.InvoiceStatusIssued, IssuedAt: now},
		Customer: &entity.Customer{Name: "Ana Gómez", ExternalKey: "1020304050"},
	}

	out, err := NewMarotoPDFGenerator(Issuer{Name: "Droguería Centro", NIT: "900123456-7"}).GenerateInvoicePDF(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateInvoicePDF_SinFactura(t *testing.T) {
	_, err := NewMarotoPDFGenerator(Issuer{}).GenerateInvoicePDF(context.Background(), appbilling.SaleDocument{Sale: &entity.Sale{}})
	assert.Error(t, err)
}
