package analytics

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

const (
	dateLayout         = "2006-01-02"
	defaultHistoryDays = 30
	defaultHistorySize = 20
	maxHistorySize     = 100
)

// SalesHistoryUseCase lista las ventas de un rango, paginadas y de la más reciente a la más antigua.
type SalesHistoryUseCase struct {
	saleRepo repository.SaleRepository
	loc      *time.Location
	now      func() time.Time
}

// NewSalesHistoryUseCase construye el caso de uso. loc nil = UTC.
func NewSalesHistoryUseCase(saleRepo repository.SaleRepository, loc *time.Location) *SalesHistoryUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &SalesHistoryUseCase{saleRepo: saleRepo, loc: loc, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *SalesHistoryUseCase) WithClock(now func() time.Time) *SalesHistoryUseCase {
	uc.now = now
	return uc
}

// List devuelve una página del historial. Total es el número de ventas del rango tras el filtro de estado.
func (uc *SalesHistoryUseCase) List(ctx context.Context, in dto.SalesHistoryRequest) (*dto.SalesHistoryResponse, error) {
	from, to, err := uc.parseRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	status := strings.ToLower(strings.TrimSpace(in.Status))
	switch status {
	case "", entity.SaleStatusCompleted, entity.SaleStatusCancelled, entity.SaleStatusPending:
	default:
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}
	if in.Offset < 0 {
		return nil, fmt.Errorf("%w: offset negativo", domain.ErrInvalidInput)
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultHistorySize
	}
	if limit > maxHistorySize {
		limit = maxHistorySize
	}

	sales, err := uc.saleRepo.ListByDateRange(ctx, in.BranchID, from, to)
	if err != nil {
		return nil, fmt.Errorf("historial: listar ventas: %w", err)
	}
	if status != "" {
		sales = slices.DeleteFunc(sales, func(s *entity.Sale) bool { return s.Status != status })
	}
	slices.SortFunc(sales, newestFirst)

	out := &dto.SalesHistoryResponse{
		Items:  make([]dto.SaleSummaryResponse, 0, limit),
		Total:  len(sales),
		Limit:  limit,
		Offset: in.Offset,
	}
	if in.Offset >= len(sales) {
		return out, nil
	}
	page := sales[in.Offset:min(in.Offset+limit, len(sales))]
	for _, s := range page {
		out.Items = append(out.Items, dto.ToSaleSummary(s))
	}
	return out, nil
}

// parseRange interpreta las fechas en la zona de la farmacia. Sin fechas: últimos 30 días.
func (uc *SalesHistoryUseCase) parseRange(start, end string) (time.Time, time.Time, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	now := uc.now().In(uc.loc)
	endDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, uc.loc)
	if end != "" {
		d, err := time.ParseInLocation(dateLayout, end, uc.loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date debe ser YYYY-MM-DD", domain.ErrInvalidInput)
		}
		endDay = d
	}
	from := endDay.AddDate(0, 0, -defaultHistoryDays)
	if start != "" {
		d, err := time.ParseInLocation(dateLayout, start, uc.loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date debe ser YYYY-MM-DD", domain.ErrInvalidInput)
		}
		from = d
	}
	if from.After(endDay) {
		return time.Time{}, time.Time{}, domain.ErrInvalidRange
	}
	return from, endDay.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}
