package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

var now = time.Date(2024, 10, 15, 10, 30, 0, 0, time.UTC)

func product(id string, price int64) *entity.Product {
	return &entity.Product{ID: id, Name: "Producto " + id, Category: "Analgésicos", Price: decimal.NewFromInt(price), Active: true}
}

func assertTotalConsistente(t *testing.T, d *entity.DraftSale) {
	t.Helper()
	assert.True(t, entity.SumSubtotals(d.Items()).Equal(d.Total()),
		"total %s debe ser igual a Σ subtotales %s", d.Total(), entity.SumSubtotals(d.Items()))
}

// [A×2 @ $5, B×1 @ $10] = $20; quitar B deja $10.
func TestDraftSale_EscenarioTotales(t *testing.T) {
	d := entity.NewDraftSale("d1", "staff-1", "B1", now)
	require.NoError(t, d.AddItem(product("A", 5), 2, 100, now))
	require.NoError(t, d.AddItem(product("B", 10), 1, 100, now))
	assert.True(t, decimal.NewFromInt(20).Equal(d.Total()))
	assertTotalConsistente(t, d)

	require.NoError(t, d.RemoveItem("B", now))
	assert.True(t, decimal.NewFromInt(10).Equal(d.Total()))
	assertTotalConsistente(t, d)
}

func TestDraftSale_AgregarDosVecesFusionaCantidades(t *testing.T) {
	d := entity.NewDraftSale("d1", "staff-1", "B1", now)
	p := product("A", 5)
	require.NoError(t, d.AddItem(p, 3, 10, now))
	require.NoError(t, d.AddItem(p, 4, 10, now))

	items := d.Items()
	require.Len(t, items, 1, "debe existir una sola línea por producto")
	assert.Equal(t, 7, items[0].Quantity)
	assertTotalConsistente(t, d)
}

func TestDraftSale_FusionSuperaStock_NoCambiaBorrador(t *testing.T) {
	d := entity.NewDraftSale("d1", "staff-1", "B1", now)
	p := product("A", 5)
	require.NoError(t, d.AddItem(p, 6, 10, now))

	err := d.AddItem(p, 5, 10, now)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 6, d.QuantityOf("A"))
	assertTotalConsistente(t, d)
}

func TestDraftSale_ConservaOrdenDeInsercion(t *testing.T) {
	d := entity.NewDraftSale("d1", "staff-1", "B1", now)
	for _, id := range []string{"C", "A", "B"} {
		require.NoError(t, d.AddItem(product(id, 1), 1, 5, now))
	}
	require.NoError(t, d.AddItem(product("A", 1), 1, 5, now))

	items := d.Items()
	assert.Equal(t, []string{"C", "A", "B"}, []string{items[0].ProductID, items[1].ProductID, items[2].ProductID})
}

func TestDraftSale_CantidadNoPositivaEsInvalida(t *testing.T) {
	d := entity.NewDraftSale("d1", "staff-1", "B1", now)
	assert.ErrorIs(t, d.AddItem(product("A", 5), 0, 10, now), domain.ErrInvalidInput)
	assert.ErrorIs(t, d.AddItem(product("A", 5), -1, 10, now), domain.ErrInvalidInput)

	require.NoError(t, d.AddItem(product("A", 5), 1, 10, now))
	assert.ErrorIs(t, d.SetQuantity("A", 0, 10, now), domain.ErrInvalidInput,
		"cantidad 0 no se traduce en eliminar la línea")
	assert.Equal(t, 1, d.QuantityOf("A"))
}

func TestDraftSale_SetQuantity(t *testing.T) {
	d := entity.NewDraftSale("d1", "staff-1", "B1", now)
	require.NoError(t, d.AddItem(product("A", 5), 1, 10, now))

	require.NoError(t, d.SetQuantity("A", 4, 10, now))
	assert.True(t, decimal.NewFromInt(20).Equal(d.Total()))

	err := d.SetQuantity("A", 11, 10, now)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 4, d.QuantityOf("A"), "la cantidad rechazada no modifica el borrador")
	assertTotalConsistente(t, d)

	assert.ErrorIs(t, d.SetQuantity("Z", 1, 10, now), domain.ErrNotFound)
}

func TestDraftSale_RemoveItemInexistenteEsNoop(t *testing.T) {
	d := entity.NewDraftSale("d1", "staff-1", "B1", now)
	require.NoError(t, d.AddItem(product("A", 5), 1, 10, now))
	require.NoError(t, d.RemoveItem("NOPE", now))
	assert.Len(t, d.Items(), 1)
}

func TestDraftSale_Transiciones(t *testing.T) {
	d := entity.NewDraftSale("d1", "staff-1", "B1", now)
	assert.Equal(t, entity.DraftStatusBuilding, d.Status)

	assert.ErrorIs(t, d.ProceedToCheckout(now), domain.ErrEmptyCart)

	require.NoError(t, d.AddItem(product("A", 5), 1, 10, now))
	require.NoError(t, d.ProceedToCheckout(now))
	assert.Equal(t, entity.DraftStatusAwaitingCheckout, d.Status)

	assert.ErrorIs(t, d.AddItem(product("B", 5), 1, 10, now), domain.ErrInvalidTransition,
		"no se editan líneas esperando el cobro")
	assert.ErrorIs(t, d.ProceedToCheckout(now), domain.ErrInvalidTransition)

	require.NoError(t, d.Reopen(now))
	assert.Equal(t, entity.DraftStatusBuilding, d.Status)
	assert.ErrorIs(t, d.MarkCommitted(now), domain.ErrInvalidTransition)

	require.NoError(t, d.ProceedToCheckout(now))
	require.NoError(t, d.MarkCommitted(now))
	assert.True(t, d.IsTerminal())
	assert.ErrorIs(t, d.Cancel(now), domain.ErrInvalidTransition)
}

func TestDraftSale_CancelarDesdeEstadosNoTerminales(t *testing.T) {
	d := entity.NewDraftSale("d1", "staff-1", "B1", now)
	require.NoError(t, d.Cancel(now))
	assert.Equal(t, entity.DraftStatusCancelled, d.Status)

	d2 := entity.NewDraftSale("d2", "staff-1", "B1", now)
	require.NoError(t, d2.AddItem(product("A", 5), 1, 10, now))
	require.NoError(t, d2.ProceedToCheckout(now))
	require.NoError(t, d2.Cancel(now))
	assert.Equal(t, entity.DraftStatusCancelled, d2.Status)
}

func TestSale_NewSaleFromDraft_CongelaLineas(t *testing.T) {
	d := entity.NewDraftSale("d1", "staff-1", "B1", now)
	require.NoError(t, d.AddItem(product("A", 5), 2, 10, now))
	require.NoError(t, d.AddItem(product("B", 10), 1, 10, now))
	require.NoError(t, d.ProceedToCheckout(now))

	customer := &entity.Customer{ID: "c1", Name: "John Doe"}
	sale := entity.NewSaleFromDraft("s1", d, customer, entity.PaymentMethodCash, nil, now)

	assert.Equal(t, entity.SaleStatusCompleted, sale.Status)
	assert.Equal(t, "John Doe", sale.CustomerName)
	assert.True(t, decimal.NewFromInt(20).Equal(sale.Total))
	assert.Equal(t, 3, sale.ItemCount())

	sale.Items[0].Quantity = 99
	assert.Equal(t, 2, d.QuantityOf("A"), "la venta guarda una copia de las líneas")

	require.NoError(t, sale.Cancel(now))
	assert.ErrorIs(t, sale.Cancel(now), domain.ErrInvalidTransition)
}
