package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/infrastructure/memory"
)

var ahora = time.Date(2024, 11, 20, 10, 0, 0, 0, time.UTC)

// fixedStock devuelve existencias fijas por producto.
type fixedStock map[string]int

func (f fixedStock) AvailableQuantity(_ context.Context, _, productID string) (int, error) {
	return f[productID], nil
}

func newService(stock fixedStock) *DraftService {
	s := memory.New()
	s.PutProduct(entity.Product{ID: "A", Name: "Acetaminofén", Category: "Analgésicos", Price: decimal.NewFromInt(5), Active: true})
	s.PutProduct(entity.Product{ID: "B", Name: "Bromhexina", Category: "Respiratorio", Price: decimal.NewFromInt(10), Active: true})
	s.PutProduct(entity.Product{ID: "X", Name: "Descontinuado", Price: decimal.NewFromInt(1), Active: false})
	return NewDraftService(s.Products(), stock, nil).WithClock(func() time.Time { return ahora })
}

func TestStart_UnBorradorActivoPorUsuario(t *testing.T) {
	svc := newService(fixedStock{})
	ctx := context.Background()

	d, err := svc.Start(ctx, "cajero-1", "suc-1")
	require.NoError(t, err)
	assert.Equal(t, entity.DraftStatusBuilding, d.Status)
	assert.True(t, d.Total().IsZero())

	_, err = svc.Start(ctx, "cajero-1", "suc-1")
	assert.ErrorIs(t, err, domain.ErrDraftAlreadyActive)

	_, err = svc.Start(ctx, "cajero-2", "suc-1")
	assert.NoError(t, err)
	assert.Equal(t, 2, svc.ActiveCount())
}

func TestAddItem_TotalYQuitarLinea(t *testing.T) {
	svc := newService(fixedStock{"A": 10, "B": 10})
	ctx := context.Background()
	_, err := svc.Start(ctx, "c1", "suc-1")
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, "c1", "A", 2)
	require.NoError(t, err)
	d, err := svc.AddItem(ctx, "c1", "B", 1)
	require.NoError(t, err)
	assert.True(t, d.Total().Equal(decimal.NewFromInt(20)))

	d, err = svc.RemoveItem(ctx, "c1", "B")
	require.NoError(t, err)
	assert.True(t, d.Total().Equal(decimal.NewFromInt(10)))
	require.Len(t, d.Items(), 1)
	assert.Equal(t, "Analgésicos", d.Items()[0].Category)
}

func TestAddItem_FusionaYValidaContraStock(t *testing.T) {
	svc := newService(fixedStock{"A": 5})
	ctx := context.Background()
	_, _ = svc.Start(ctx, "c1", "suc-1")

	_, err := svc.AddItem(ctx, "c1", "A", 2)
	require.NoError(t, err)
	d, err := svc.AddItem(ctx, "c1", "A", 3)
	require.NoError(t, err)
	require.Len(t, d.Items(), 1)
	assert.Equal(t, 5, d.Items()[0].Quantity)

	_, err = svc.AddItem(ctx, "c1", "A", 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	d, _ = svc.Get(ctx, "c1")
	assert.Equal(t, 5, d.QuantityOf("A"))
}

func TestAddItem_ErroresDeEntrada(t *testing.T) {
	svc := newService(fixedStock{"A": 5})
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "c1", "A", 1)
	assert.ErrorIs(t, err, domain.ErrNoActiveSale)

	_, _ = svc.Start(ctx, "c1", "suc-1")
	_, err = svc.AddItem(ctx, "c1", "A", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.AddItem(ctx, "c1", "no-existe", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.AddItem(ctx, "c1", "X", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetQuantity_RechazaSinCambiarElBorrador(t *testing.T) {
	svc := newService(fixedStock{"A": 4})
	ctx := context.Background()
	_, _ = svc.Start(ctx, "c1", "suc-1")
	_, _ = svc.AddItem(ctx, "c1", "A", 2)

	_, err := svc.SetQuantity(ctx, "c1", "A", 5)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	_, err = svc.SetQuantity(ctx, "c1", "A", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.SetQuantity(ctx, "c1", "B", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	d, _ := svc.Get(ctx, "c1")
	assert.Equal(t, 2, d.QuantityOf("A"))
	assert.True(t, d.Total().Equal(decimal.NewFromInt(10)))

	d, err = svc.SetQuantity(ctx, "c1", "A", 4)
	require.NoError(t, err)
	assert.True(t, d.Total().Equal(decimal.NewFromInt(20)))
}

func TestProceedToCheckout_YReopen(t *testing.T) {
	svc := newService(fixedStock{"A": 4})
	ctx := context.Background()
	_, _ = svc.Start(ctx, "c1", "suc-1")

	_, err := svc.ProceedToCheckout(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrEmptyCart)

	_, _ = svc.AddItem(ctx, "c1", "A", 1)
	d, err := svc.ProceedToCheckout(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, entity.DraftStatusAwaitingCheckout, d.Status)

	_, err = svc.AddItem(ctx, "c1", "A", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	d, err = svc.Reopen(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, entity.DraftStatusBuilding, d.Status)
}

func TestCancel_LiberaElRegistro(t *testing.T) {
	svc := newService(fixedStock{"A": 4})
	ctx := context.Background()
	_, _ = svc.Start(ctx, "c1", "suc-1")
	_, _ = svc.AddItem(ctx, "c1", "A", 1)

	require.NoError(t, svc.Cancel(ctx, "c1"))
	_, err := svc.Get(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNoActiveSale)
	assert.ErrorIs(t, svc.Cancel(ctx, "c1"), domain.ErrNoActiveSale)

	_, err = svc.Start(ctx, "c1", "suc-1")
	assert.NoError(t, err)
}

func TestCheckout_ConfirmaSoloSiFnTerminaBien(t *testing.T) {
	svc := newService(fixedStock{"A": 4})
	ctx := context.Background()
	_, _ = svc.Start(ctx, "c1", "suc-1")
	_, _ = svc.AddItem(ctx, "c1", "A", 3)

	err := svc.Checkout("c1", func(*entity.DraftSale) error { return nil })
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, _ = svc.ProceedToCheckout(ctx, "c1")
	boom := errors.New("falla")
	err = svc.Checkout("c1", func(d *entity.DraftSale) error {
		assert.Equal(t, 3, d.QuantityOf("A"))
		return boom
	})
	require.ErrorIs(t, err, boom)
	d, err := svc.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, entity.DraftStatusAwaitingCheckout, d.Status)

	require.NoError(t, svc.Checkout("c1", func(*entity.DraftSale) error { return nil }))
	_, err = svc.Get(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNoActiveSale)
	assert.Zero(t, svc.ActiveCount())
}

func TestCancel_NoEsperaUnCobroEnCurso(t *testing.T) {
	svc := newService(fixedStock{"A": 4})
	ctx := context.Background()
	_, _ = svc.Start(ctx, "c1", "suc-1")
	_, _ = svc.AddItem(ctx, "c1", "A", 1)
	_, _ = svc.ProceedToCheckout(ctx, "c1")

	inside := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = svc.Checkout("c1", func(*entity.DraftSale) error {
			close(inside)
			<-release
			return nil
		})
	}()
	<-inside

	assert.ErrorIs(t, svc.Cancel(ctx, "c1"), domain.ErrInvalidTransition)
	close(release)
	wg.Wait()
}

func TestBorradores_UsuariosIndependientes(t *testing.T) {
	svc := newService(fixedStock{"A": 100})
	ctx := context.Background()
	var wg sync.WaitGroup
	for _, staff := range []string{"c1", "c2", "c3", "c4"} {
		wg.Add(1)
		go func(staff string) {
			defer wg.Done()
			_, err := svc.Start(ctx, staff, "suc-1")
			assert.NoError(t, err)
			for i := 0; i < 10; i++ {
				_, err := svc.AddItem(ctx, staff, "A", 1)
				assert.NoError(t, err)
			}
		}(staff)
	}
	wg.Wait()

	for _, staff := range []string{"c1", "c2", "c3", "c4"} {
		d, err := svc.Get(ctx, staff)
		require.NoError(t, err)
		assert.Equal(t, 10, d.QuantityOf("A"))
		assert.True(t, d.Total().Equal(decimal.NewFromInt(50)))
	}
}
