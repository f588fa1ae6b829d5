package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrEmptyCart          = errors.New("la venta no tiene productos")
	ErrNoActiveSale       = errors.New("no hay una venta activa")
	ErrDraftAlreadyActive = errors.New("ya existe una venta activa para este usuario")
	ErrInvalidTransition  = errors.New("transición de estado inválida")
	ErrInvalidRange       = errors.New("rango de fechas inválido")
	ErrPersistence        = errors.New("no se pudo guardar la venta")
	ErrAllocationConflict = errors.New("inventario ocupado, intente de nuevo")
)

// InsufficientStockError detalla el faltante de un producto.
// errors.Is(err, ErrInsufficientStock) es verdadero para este tipo.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: solicitado %d, disponible %d", e.ProductID, e.Requested, e.Available)
}

// Is permite comparar contra ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// NewInsufficientStock construye el error tipado.
func NewInsufficientStock(productID string, requested, available int) error {
	return &InsufficientStockError{ProductID: productID, Requested: requested, Available: available}
}
