// Package pdf implementa la representación impresa de la factura de venta de la farmacia.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Farmacia + NIT      │  N° Factura + Fecha          │
//	│  EMISOR: Dirección / Tel                                    │
//	│  CLIENTE: Nombre + documento (o consumidor final)           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | Lotes | P.Unit | Subtotal          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Total + medio de pago                             │
//	│  FOOTER: QR (número + venta) + leyenda                      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appbilling "github.com/jhoicas/farmacia-pos/internal/application/billing"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

var _ appbilling.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 110, Blue: 80}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var paymentLabels = map[string]string{
	entity.PaymentMethodCash:      "Efectivo",
	entity.PaymentMethodCard:      "Tarjeta",
	entity.PaymentMethodInsurance: "Aseguradora / EPS",
}

// Issuer son los datos del establecimiento impresos en el encabezado.
type Issuer struct {
	Name    string
	NIT     string
	Address string
	Phone   string
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	issuer Issuer
}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator(issuer Issuer) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{issuer: issuer}
}

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(_ context.Context, doc appbilling.SaleDocument) ([]byte, error) {
	if doc.Sale == nil || doc.Invoice == nil {
		return nil, fmt.Errorf("pdf: venta y factura son obligatorias")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Factura de venta "+doc.Invoice.Number, true).
		WithAuthor(nonEmpty(g.issuer.Name, "Farmacia"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.issuer, doc.Invoice))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(issuerRow(g.issuer))
	m.AddRows(customerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(doc.Sale)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(doc.Sale))

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRows(doc)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(issuer Issuer, inv *entity.Invoice) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(issuer.Name, "Farmacia"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("NIT: "+nonEmpty(issuer.NIT, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("FACTURA DE VENTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(inv.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+inv.IssuedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func issuerRow(issuer Issuer) core.Row {
	return row.New(8).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Dirección: %s   |   Tel: %s",
				nonEmpty(issuer.Address, "—"),
				nonEmpty(issuer.Phone, "—"),
			), props.Text{Size: 8, Top: 2, Color: colorGray}),
		),
	)
}

// customerRow usa el cliente registrado si existe; si no, el nombre guardado en la venta.
func customerRow(doc appbilling.SaleDocument) core.Row {
	name, detail := nonEmpty(doc.Sale.CustomerName, "Consumidor final"), ""
	if c := doc.Customer; c != nil {
		name = c.Name
		detail = fmt.Sprintf("CC/NIT: %s   |   Email: %s   |   Tel: %s",
			c.ExternalKey, nonEmpty(c.Email, "—"), nonEmpty(c.Phone, "—"))
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(detail, props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Producto", 5, align.Left),
		h("Lotes", 2, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Subtotal", 2, align.Right),
	)
}

func tableDetailRows(sale *entity.Sale) []core.Row {
	batches := batchesByProduct(sale.Allocations)
	rows := make([]core.Row, 0, len(sale.Items))
	for _, it := range sale.Items {
		rows = append(rows, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprint(it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(it.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(batches[it.ProductID], props.Text{Size: 7, Top: 1, Color: colorGray})),
			col.New(2).Add(text.New("$"+formatMoney(it.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New("$"+formatMoney(it.Subtotal()), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func totalsRow(sale *entity.Sale) core.Row {
	method := nonEmpty(paymentLabels[sale.PaymentMethod], sale.PaymentMethod)
	return row.New(16).Add(
		col.New(6),
		col.New(3).Add(
			text.New("TOTAL A PAGAR:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2}),
			text.New("Medio de pago:", props.Text{Size: 8, Align: align.Right, Right: 2, Top: 7}),
		),
		col.New(3).Add(
			text.New("$"+formatMoney(sale.Total), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1}),
			text.New(method, props.Text{Size: 8, Align: align.Right, Right: 1, Top: 7}),
		),
	)
}

func footerRows(doc appbilling.SaleDocument) []core.Row {
	qr := doc.Invoice.Number + "|" + doc.Sale.ID + "|" + doc.Sale.Total.StringFixed(2)
	return []core.Row{
		line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}),
		row.New(40).Add(
			col.New(3).Add(code.NewQr(qr, props.Rect{Percent: 95, Center: true})),
			col.New(9).Add(
				text.New("Venta: "+doc.Sale.ID, props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
				text.New("Los medicamentos no tienen cambio ni devolución salvo defecto de calidad.", props.Text{
					Size: 7, Top: 12, Left: 3, Color: colorGray,
				}),
				text.New("Gracias por su compra", props.Text{
					Style: fontstyle.Bold, Size: 10, Top: 22, Left: 3, Color: colorPrimary,
				}),
			),
		),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func batchesByProduct(allocs []entity.Allocation) map[string]string {
	out := make(map[string]string, len(allocs))
	for _, a := range allocs {
		codes := make([]string, 0, len(a.Lots))
		for _, l := range a.Lots {
			codes = append(codes, nonEmpty(l.BatchCode, l.LotID))
		}
		out[a.ProductID] = strings.Join(codes, ", ")
	}
	return out
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney formatea con puntos de miles y coma decimal.
// Ej: 25000 → "25.000", 1234.5 → "1.234,50"
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3+3)
	if d.IsNegative() {
		buf = append(buf, '-')
	}
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	if frac != "00" {
		buf = append(buf, ',')
		buf = append(buf, frac...)
	}
	return string(buf)
}
