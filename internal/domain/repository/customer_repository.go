package repository

import (
	"context"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para clientes.
// Las búsquedas devuelven (nil, nil) cuando no hay coincidencia.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	FindByExternalKey(ctx context.Context, key string) (*entity.Customer, error)
}
