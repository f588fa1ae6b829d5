package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-pos/internal/application/analytics"
	"github.com/jhoicas/farmacia-pos/internal/application/billing"
	"github.com/jhoicas/farmacia-pos/internal/application/cart"
	"github.com/jhoicas/farmacia-pos/internal/application/checkout"
	"github.com/jhoicas/farmacia-pos/internal/application/inventory"
	"github.com/jhoicas/farmacia-pos/internal/application/reports"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
	"github.com/jhoicas/farmacia-pos/pkg/jwt"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Drafts     *cart.DraftService
	Engine     *checkout.Engine
	Ledger     *inventory.LedgerService
	Products   repository.ProductRepository
	CustomerUC *billing.CustomerUseCase
	PDF        *billing.PDFUseCase
	Reports    *reports.SalesReportUseCase
	Dashboard  *analytics.DashboardUseCase
	History    *analytics.SalesHistoryUseCase
	JWTSecret  string
	Logger     *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "time": time.Now().UTC()})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	managers := RequireRole(jwt.RoleAdmin, jwt.RoleManager)

	// Catálogo y disponibilidad
	productHandler := NewProductHandler(deps.Products, deps.Ledger, deps.Logger)
	products := protected.Group("/products")
	products.Get("/", productHandler.Search)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/availability", productHandler.Availability)

	// Clientes
	customerHandler := NewCustomerHandler(deps.CustomerUC, deps.Logger)
	customers := protected.Group("/customers")
	customers.Post("/", customerHandler.Create)
	customers.Get("/:key", customerHandler.GetByExternalKey)

	// Venta en curso del cajero y cobro
	saleHandler := NewSaleHandler(deps.Drafts, deps.Engine, deps.PDF, deps.Logger)
	dashboardHandler := NewDashboardHandler(deps.Dashboard, deps.History, deps.Logger)
	sales := protected.Group("/sales")
	sales.Get("/", dashboardHandler.History)
	draft := sales.Group("/draft")
	draft.Post("/", saleHandler.StartDraft)
	draft.Get("/", saleHandler.GetDraft)
	draft.Delete("/", saleHandler.CancelDraft)
	draft.Post("/items", saleHandler.AddItem)
	draft.Put("/items/:productId", saleHandler.SetQuantity)
	draft.Delete("/items/:productId", saleHandler.RemoveItem)
	draft.Post("/checkout", saleHandler.ProceedToCheckout)
	draft.Post("/reopen", saleHandler.Reopen)
	sales.Post("/complete", saleHandler.Complete)
	sales.Get("/:id", saleHandler.GetSale)
	sales.Post("/:id/cancel", managers, saleHandler.CancelSale)
	sales.Post("/:id/invoice", saleHandler.IssueInvoice)
	sales.Get("/:id/invoice/pdf", saleHandler.InvoicePDF)

	// Reportes
	reportHandler := NewReportHandler(deps.Reports, deps.Logger)
	protected.Get("/reports/sales", managers, reportHandler.Sales)
	protected.Get("/dashboard/summary", dashboardHandler.Summary)
}
