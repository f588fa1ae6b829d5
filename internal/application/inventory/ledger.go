package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	domaininv "github.com/jhoicas/farmacia-pos/internal/domain/inventory"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

// DefaultLockTimeout es la espera máxima por el bloqueo de un producto si no se configura otra.
const DefaultLockTimeout = 3 * time.Second

// LedgerService es el único dueño de los descuentos de cantidad de los lotes.
// Asignar y reintegrar se serializan por (sucursal, producto): en proceso con un
// bloqueo por clave y en PostgreSQL con SELECT ... FOR UPDATE dentro de la transacción.
type LedgerService struct {
	lotRepo     repository.LotRepository
	txRunner    TxRunner
	locks       *keyedLocker
	lockTimeout time.Duration
	now         func() time.Time
	loc         *time.Location // zona de la farmacia; define el día de vencimiento
	log         zerolog.Logger
}

// NewLedgerService construye el ledger. lotRepo se usa solo para lecturas sin bloqueo.
func NewLedgerService(lotRepo repository.LotRepository, txRunner TxRunner, lockTimeout time.Duration, log *logger.Logger) *LedgerService {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerService{
		lotRepo:     lotRepo,
		txRunner:    txRunner,
		locks:       newKeyedLocker(),
		lockTimeout: lockTimeout,
		now:         time.Now,
		loc:         time.UTC,
		log:         log.Component("ledger"),
	}
}

// WithClock reemplaza el reloj (tests y reprocesos con fecha fija).
func (s *LedgerService) WithClock(now func() time.Time) *LedgerService {
	s.now = now
	return s
}

// WithLocation fija la zona horaria con la que se decide si un lote ya venció.
func (s *LedgerService) WithLocation(loc *time.Location) *LedgerService {
	if loc != nil {
		s.loc = loc
	}
	return s
}

// today es el día calendario local: un lote que vence hoy se vende hasta la medianoche local.
func (s *LedgerService) today(now time.Time) time.Time {
	return entity.LocalDate(now, s.loc)
}

// AvailableQuantity suma la cantidad de los lotes vigentes del producto en la sucursal.
// Es una lectura sin bloqueo; puede quedar desactualizada frente a cobros concurrentes.
func (s *LedgerService) AvailableQuantity(ctx context.Context, branchID, productID string) (int, error) {
	if branchID == "" || productID == "" {
		return 0, domain.ErrInvalidInput
	}
	lots, err := s.lotRepo.ListByProduct(ctx, branchID, productID)
	if err != nil {
		return 0, fmt.Errorf("ledger: listar lotes: %w", err)
	}
	return domaininv.AvailableQuantity(lots, s.today(s.now())), nil
}

// Lots devuelve los lotes vendibles en orden FEFO (consulta de existencias por lote).
func (s *LedgerService) Lots(ctx context.Context, branchID, productID string) ([]entity.Lot, error) {
	if branchID == "" || productID == "" {
		return nil, domain.ErrInvalidInput
	}
	lots, err := s.lotRepo.ListByProduct(ctx, branchID, productID)
	if err != nil {
		return nil, fmt.Errorf("ledger: listar lotes: %w", err)
	}
	return domaininv.SellableLots(lots, s.today(s.now())), nil
}

// Allocate descuenta quantity del producto siguiendo FEFO y registra un movimiento OUT por lote.
// Si el stock no alcanza devuelve *domain.InsufficientStockError y no toca ningún lote.
// Si el bloqueo no se obtiene a tiempo devuelve domain.ErrAllocationConflict.
func (s *LedgerService) Allocate(ctx context.Context, branchID, productID string, quantity int, reference string) (entity.Allocation, error) {
	if branchID == "" || productID == "" || quantity <= 0 {
		return entity.Allocation{}, domain.ErrInvalidInput
	}

	unlock, err := s.lock(ctx, branchID, productID)
	if err != nil {
		return entity.Allocation{}, err
	}
	defer unlock()

	now := s.now()
	asOf := s.today(now)
	alloc := entity.Allocation{BranchID: branchID, ProductID: productID, Reference: reference}

	err = s.txRunner.Run(ctx, func(lotRepo repository.LotRepository, movRepo repository.InventoryMovementRepository) error {
		// Bloquea los lotes vendibles (SELECT ... FOR UPDATE)
		lots, err := lotRepo.ListForUpdate(ctx, branchID, productID, asOf)
		if err != nil {
			return err
		}
		plan, err := domaininv.PlanFEFO(productID, lots, quantity, asOf)
		if err != nil {
			return err
		}
		for _, la := range plan {
			if err := lotRepo.AdjustQuantity(ctx, la.LotID, -la.Quantity, now); err != nil {
				return err
			}
			if err := movRepo.Create(ctx, newMovement(alloc, la, entity.MovementTypeOUT, -la.Quantity, "venta", now)); err != nil {
				return err
			}
		}
		alloc.Lots = plan
		return nil
	})
	if err != nil {
		return entity.Allocation{}, ledgerError("asignar", productID, err)
	}

	s.log.Debug().
		Str("product_id", productID).
		Str("reference", reference).
		Int("quantity", quantity).
		Int("lots", len(alloc.Lots)).
		Msg("stock asignado")
	return alloc, nil
}

// Release reintegra exactamente los lotes de una asignación (compensación o anulación)
// y registra un movimiento REVERSAL por lote.
func (s *LedgerService) Release(ctx context.Context, alloc entity.Allocation, reason string) error {
	if len(alloc.Lots) == 0 {
		return nil
	}
	if alloc.BranchID == "" || alloc.ProductID == "" {
		return domain.ErrInvalidInput
	}

	unlock, err := s.lock(ctx, alloc.BranchID, alloc.ProductID)
	if err != nil {
		return err
	}
	defer unlock()

	now := s.now()
	err = s.txRunner.Run(ctx, func(lotRepo repository.LotRepository, movRepo repository.InventoryMovementRepository) error {
		for _, la := range alloc.Lots {
			if la.Quantity <= 0 {
				continue
			}
			if err := lotRepo.AdjustQuantity(ctx, la.LotID, la.Quantity, now); err != nil {
				return err
			}
			if err := movRepo.Create(ctx, newMovement(alloc, la, entity.MovementTypeREVERSAL, la.Quantity, reason, now)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ledgerError("reintegrar", alloc.ProductID, err)
	}

	s.log.Info().
		Str("product_id", alloc.ProductID).
		Str("reference", alloc.Reference).
		Int("quantity", alloc.Total()).
		Str("reason", reason).
		Msg("stock reintegrado")
	return nil
}

func (s *LedgerService) lock(ctx context.Context, branchID, productID string) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()
	unlock, err := s.locks.Lock(lockCtx, branchID+"/"+productID)
	if err != nil {
		// Cancelación del llamador: se propaga tal cual.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.log.Warn().Str("product_id", productID).Dur("timeout", s.lockTimeout).Msg("timeout esperando bloqueo de producto")
		return nil, domain.ErrAllocationConflict
	}
	return unlock, nil
}

func newMovement(alloc entity.Allocation, la entity.LotAllocation, typ string, qty int, reason string, now time.Time) *entity.InventoryMovement {
	return &entity.InventoryMovement{
		ID:        uuid.New().String(),
		Reference: alloc.Reference,
		LotID:     la.LotID,
		ProductID: alloc.ProductID,
		BranchID:  alloc.BranchID,
		Type:      typ,
		Quantity:  qty,
		UnitCost:  la.UnitCost,
		TotalCost: la.UnitCost.Mul(decimal.NewFromInt(int64(qty))),
		Reason:    reason,
		CreatedAt: now,
	}
}

// ledgerError deja pasar los errores de dominio y envuelve los de infraestructura.
func ledgerError(op, productID string, err error) error {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrAllocationConflict),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return fmt.Errorf("ledger: %s %s: %w", op, productID, err)
}
