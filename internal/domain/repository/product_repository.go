package repository

import (
	"context"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// ProductRepository es el lector del catálogo (solo lectura para el motor de ventas).
// GetByID devuelve (nil, nil) si el producto no existe.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Search(ctx context.Context, query string, limit int) ([]*entity.Product, error)
}
