package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/farmacia-pos/internal/application/analytics"
	"github.com/jhoicas/farmacia-pos/internal/application/billing"
	"github.com/jhoicas/farmacia-pos/internal/application/cart"
	"github.com/jhoicas/farmacia-pos/internal/application/checkout"
	"github.com/jhoicas/farmacia-pos/internal/application/inventory"
	"github.com/jhoicas/farmacia-pos/internal/application/reports"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
	infracache "github.com/jhoicas/farmacia-pos/internal/infrastructure/cache"
	"github.com/jhoicas/farmacia-pos/internal/infrastructure/events"
	"github.com/jhoicas/farmacia-pos/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/farmacia-pos/internal/infrastructure/pdf"
	"github.com/jhoicas/farmacia-pos/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/farmacia-pos/internal/interfaces/http"
	"github.com/jhoicas/farmacia-pos/pkg/config"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// storage agrupa los adaptadores de persistencia elegidos por STORAGE_DRIVER.
type storage struct {
	products  repository.ProductRepository
	lots      repository.LotRepository
	sales     repository.SaleRepository
	customers repository.CustomerRepository
	invoices  repository.InvoiceRepository
	txRunner  inventory.TxRunner
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	// Catálogo con caché Redis opcional.
	products := store.products
	if cfg.Redis.Enabled() {
		redisStore := infracache.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := redisStore.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no responde; el catálogo se leerá sin caché")
		}
		defer redisStore.Close()
		products = infracache.NewProductCache(store.products, redisStore, cfg.Redis.CacheTTL, log)
	}

	// Eventos de venta en Kafka (opcional).
	var publisher checkout.EventPublisher
	if cfg.Kafka.Enabled() {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers)
		defer func() {
			if err := kp.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar publicador kafka")
			}
		}()
		publisher = kp
	} else {
		publisher = events.NoopPublisher{}
	}

	ledger := inventory.NewLedgerService(store.lots, store.txRunner, cfg.Checkout.LockTimeout, log).
		WithLocation(cfg.App.Location)
	drafts := cart.NewDraftService(products, ledger, log)
	customerUC := billing.NewCustomerUseCase(store.customers)
	invoiceSvc := billing.NewInvoiceService(store.invoices, cfg.Checkout.InvoicePrefix)
	engine := checkout.NewEngine(checkout.Deps{
		Drafts:    drafts,
		Ledger:    ledger,
		Customers: customerUC,
		SaleRepo:  store.sales,
		Invoices:  invoiceSvc,
		Publisher: publisher,
		Topic:     cfg.Kafka.SalesTopic,
		Logger:    log,
	})

	pdfGenerator := infrapdf.NewMarotoPDFGenerator(infrapdf.Issuer{
		Name:    cfg.Store.Name,
		NIT:     cfg.Store.NIT,
		Address: cfg.Store.Address,
		Phone:   cfg.Store.Phone,
	})
	invoicePDFUC := billing.NewPDFUseCase(store.sales, store.invoices, store.customers, pdfGenerator)
	reportUC := reports.NewSalesReportUseCase(store.sales, cfg.App.Location)
	dashboardUC := analytics.NewDashboardUseCase(store.sales, store.lots, cfg.App.Location, analytics.DashboardOptions{
		LowStockThreshold: cfg.Dashboard.LowStockThreshold,
		ExpiryWarningDays: cfg.Dashboard.ExpiryWarningDays,
	})
	historyUC := analytics.NewSalesHistoryUseCase(store.sales, cfg.App.Location)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Farmacia POS API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Drafts:     drafts,
		Engine:     engine,
		Ledger:     ledger,
		Products:   products,
		CustomerUC: customerUC,
		PDF:        invoicePDFUC,
		Reports:    reportUC,
		Dashboard:  dashboardUC,
		History:    historyUC,
		JWTSecret:  cfg.JWT.Secret,
		Logger:     log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Int("ventas_abiertas", drafts.ActiveCount()).Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		s := memory.NewSeeded(time.Now())
		log.Warn().Str("branch_id", memory.SeedBranchID).Msg("modo memoria: los datos se pierden al reiniciar")
		return &storage{
			products:  s.Products(),
			lots:      s.Lots(),
			sales:     s.Sales(),
			customers: s.Customers(),
			invoices:  s.Invoices(),
			txRunner:  memory.NewTxRunner(s),
			close:     func() {},
		}, nil

	case config.StorageDriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &storage{
			products:  postgres.NewProductRepository(pool),
			lots:      postgres.NewLotRepository(pool),
			sales:     postgres.NewSaleRepository(pool),
			customers: postgres.NewCustomerRepository(pool),
			invoices:  postgres.NewInvoiceRepository(pool),
			txRunner:  postgres.NewTxRunner(pool, cfg.Checkout.LockTimeout),
			close:     pool.Close,
		}, nil
	}
	return nil, errors.New("driver de almacenamiento no soportado: " + cfg.Storage.Driver)
}
