package postgres

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-pos/internal/application/inventory"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/pkg/config"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("FARMACIA_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("defina FARMACIA_TEST_DATABASE_URL para correr las pruebas contra PostgreSQL")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, config.DBConfig{DatabaseURL: url})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))
	return pool
}

func seedProduct(t *testing.T, pool *pgxpool.Pool, stamp string, lots ...entity.Lot) string {
	t.Helper()
	ctx := context.Background()
	productID := "prod-" + stamp
	_, err := pool.Exec(ctx, `
		INSERT INTO products (id, sku, name, category, price, active)
		VALUES ($1, $2, 'Acetaminofén IT', 'Analgésicos', 5, true)`, productID, "SKU-"+stamp)
	require.NoError(t, err)
	repo := NewLotRepository(pool)
	for i := range lots {
		lots[i].ProductID = productID
		require.NoError(t, repo.Create(ctx, &lots[i]))
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM inventory_movements WHERE product_id = $1`, productID)
		_, _ = pool.Exec(ctx, `DELETE FROM sale_allocations WHERE product_id = $1`, productID)
		_, _ = pool.Exec(ctx, `DELETE FROM lots WHERE product_id = $1`, productID)
		_, _ = pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID)
	})
	return productID
}

func TestLedgerPostgres_FEFOSinSobreventa(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	stamp := fmt.Sprint(time.Now().UnixNano())
	branch := "suc-it-" + stamp
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	productID := seedProduct(t, pool, stamp,
		entity.Lot{ID: "L1-" + stamp, BranchID: branch, BatchCode: "L1", Quantity: 5, UnitCost: decimal.NewFromInt(2),
			ExpiryDate: now.AddDate(0, 1, 0), ReceivedAt: now.AddDate(0, -2, 0)},
		entity.Lot{ID: "L2-" + stamp, BranchID: branch, BatchCode: "L2", Quantity: 10, UnitCost: decimal.NewFromInt(3),
			ExpiryDate: now.AddDate(0, 6, 0), ReceivedAt: now.AddDate(0, -1, 0)},
		entity.Lot{ID: "LX-" + stamp, BranchID: branch, BatchCode: "LX", Quantity: 50, UnitCost: decimal.NewFromInt(1),
			ExpiryDate: now.AddDate(0, 0, -1), ReceivedAt: now.AddDate(-1, 0, 0)},
	)

	ledger := inventory.NewLedgerService(NewLotRepository(pool), NewTxRunner(pool, 2*time.Second), time.Second, logger.Nop()).
		WithClock(func() time.Time { return now })

	avail, err := ledger.AvailableQuantity(ctx, branch, productID)
	require.NoError(t, err)
	assert.Equal(t, 15, avail)

	branchLots, err := NewLotRepository(pool).ListByBranch(ctx, branch)
	require.NoError(t, err)
	require.Len(t, branchLots, 3)
	assert.Equal(t, "LX-"+stamp, branchLots[0].ID)

	alloc, err := ledger.Allocate(ctx, branch, productID, 7, "venta-"+stamp)
	require.NoError(t, err)
	require.Len(t, alloc.Lots, 2)
	assert.Equal(t, 5, alloc.Lots[0].Quantity)
	assert.Equal(t, 2, alloc.Lots[1].Quantity)

	movs, err := NewInventoryMovementRepository(pool).ListByReference(ctx, "venta-"+stamp)
	require.NoError(t, err)
	assert.Len(t, movs, 2)

	// Concurrencia: 8 restantes, 12 intentos de 1.
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, short := 0, 0
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Allocate(ctx, branch, productID, 1, "c-"+stamp)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
				short++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, ok)
	assert.Equal(t, 4, short)

	avail, err = ledger.AvailableQuantity(ctx, branch, productID)
	require.NoError(t, err)
	assert.Zero(t, avail)
}

func TestSaleRepoPostgres_GuardaYLeeDetalle(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	stamp := fmt.Sprint(time.Now().UnixNano())
	now := time.Now().UTC().Truncate(time.Microsecond)
	productID := seedProduct(t, pool, stamp,
		entity.Lot{ID: "S1-" + stamp, BranchID: "suc", BatchCode: "S1", Quantity: 3, UnitCost: decimal.NewFromInt(2),
			ExpiryDate: now.AddDate(1, 0, 0), ReceivedAt: now})

	sale := &entity.Sale{
		ID: "sale-" + stamp, BranchID: "suc", StaffID: "cajero", PaymentMethod: entity.PaymentMethodCash,
		Status: entity.SaleStatusCompleted, CreatedAt: now, UpdatedAt: now,
		Items: []entity.LineItem{{ProductID: productID, ProductName: "Acetaminofén IT", Quantity: 2, UnitPrice: decimal.NewFromInt(5)}},
		Allocations: []entity.Allocation{{BranchID: "suc", ProductID: productID, Reference: "sale-" + stamp,
			Lots: []entity.LotAllocation{{LotID: "S1-" + stamp, BatchCode: "S1", Quantity: 2, UnitCost: decimal.NewFromInt(2)}}}},
	}
	sale.Total = entity.SumSubtotals(sale.Items)

	repo := NewSaleRepository(pool)
	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, sale.ID)
		_, _ = pool.Exec(ctx, `DELETE FROM sale_allocations WHERE sale_id = $1`, sale.ID)
		_, _ = pool.Exec(ctx, `DELETE FROM sales WHERE id = $1`, sale.ID)
	})
	require.NoError(t, repo.Save(ctx, sale))
	assert.ErrorIs(t, repo.Save(ctx, sale), domain.ErrInvalidInput)

	got, err := repo.GetByID(ctx, sale.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(10)))
	require.Len(t, got.Items, 1)
	require.Len(t, got.Allocations, 1)
	assert.True(t, got.Cost().Equal(decimal.NewFromInt(4)))

	list, err := repo.ListByDateRange(ctx, "suc", now.Add(-time.Second), now.Add(time.Second))
	require.NoError(t, err)
	assert.NotEmpty(t, list)

	require.NoError(t, repo.UpdateStatus(ctx, sale.ID, entity.SaleStatusCompleted, entity.SaleStatusCancelled, now))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, sale.ID, entity.SaleStatusCompleted, entity.SaleStatusCancelled, now), domain.ErrInvalidTransition)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "no-existe-"+stamp, entity.SaleStatusCompleted, entity.SaleStatusCancelled, now), domain.ErrNotFound)
}
