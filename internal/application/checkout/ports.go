package checkout

import (
	"context"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// DraftCheckout entrega el borrador del cajero bloqueado mientras se confirma (cart.DraftService).
type DraftCheckout interface {
	Checkout(staffID string, fn func(draft *entity.DraftSale) error) error
}

// Ledger asigna y reintegra lotes (inventory.LedgerService).
type Ledger interface {
	Allocate(ctx context.Context, branchID, productID string, quantity int, reference string) (entity.Allocation, error)
	Release(ctx context.Context, alloc entity.Allocation, reason string) error
}

// CustomerResolver obtiene o crea el cliente del cobro (billing.CustomerUseCase).
type CustomerResolver interface {
	Resolve(ctx context.Context, customerID string, newCustomer *dto.CreateCustomerRequest) (*entity.Customer, error)
}

// InvoiceIssuer emite la referencia de factura (billing.InvoiceService).
type InvoiceIssuer interface {
	Issue(ctx context.Context, sale *entity.Sale) (*entity.Invoice, error)
}

// EventPublisher publica eventos de venta (infrastructure/events).
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
}
