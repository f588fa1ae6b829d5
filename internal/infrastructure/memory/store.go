package memory

import (
	"sync"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// Store guarda en memoria todo lo que el motor de ventas persiste.
// Sirve para desarrollo local (STORAGE_DRIVER=memory) y para tests.
type Store struct {
	mu          sync.RWMutex
	products    map[string]entity.Product
	lots        map[string]entity.Lot
	movements   []entity.InventoryMovement
	sales       map[string]*entity.Sale
	customers   map[string]entity.Customer
	invoices    map[string]entity.Invoice // por sale_id
	invoiceSeqs map[string]int
}

// New crea un Store vacío.
func New() *Store {
	return &Store{
		products:    make(map[string]entity.Product),
		lots:        make(map[string]entity.Lot),
		movements:   make([]entity.InventoryMovement, 0, 64),
		sales:       make(map[string]*entity.Sale),
		customers:   make(map[string]entity.Customer),
		invoices:    make(map[string]entity.Invoice),
		invoiceSeqs: make(map[string]int),
	}
}

// Products devuelve el lector del catálogo.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Lots devuelve el repositorio de lotes fuera de transacción.
func (s *Store) Lots() *LotRepo { return &LotRepo{s: s} }

// Movements devuelve el repositorio de movimientos.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// Sales devuelve el repositorio de ventas.
func (s *Store) Sales() *SaleRepo { return &SaleRepo{s: s} }

// Customers devuelve el repositorio de clientes.
func (s *Store) Customers() *CustomerRepo { return &CustomerRepo{s: s} }

// Invoices devuelve el repositorio de facturas.
func (s *Store) Invoices() *InvoiceRepo { return &InvoiceRepo{s: s} }

// PutProduct agrega o reemplaza un producto del catálogo.
func (s *Store) PutProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// PutLot agrega o reemplaza un lote (lo hace el módulo de inventario externo).
func (s *Store) PutLot(l entity.Lot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lots[l.ID] = l
}

// Lot devuelve una copia del lote, para inspección en tests.
func (s *Store) Lot(id string) (entity.Lot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lots[id]
	return l, ok
}

func cloneSale(src *entity.Sale) *entity.Sale {
	if src == nil {
		return nil
	}
	cp := *src
	cp.Items = append([]entity.LineItem(nil), src.Items...)
	cp.Allocations = make([]entity.Allocation, len(src.Allocations))
	for i, a := range src.Allocations {
		a.Lots = append([]entity.LotAllocation(nil), a.Lots...)
		cp.Allocations[i] = a
	}
	return &cp
}
