package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

// CustomerUseCase casos de uso para clientes (colaborador del cobro).
type CustomerUseCase struct {
	repo repository.CustomerRepository
	now  func() time.Time
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo, now: time.Now}
}

// Create crea un nuevo cliente; el documento no puede repetirse.
func (uc *CustomerUseCase) Create(ctx context.Context, in dto.CreateCustomerRequest) (*entity.Customer, error) {
	name := strings.TrimSpace(in.Name)
	key := strings.TrimSpace(in.ExternalKey)
	if name == "" || key == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.FindByExternalKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("clientes: buscar %s: %w", key, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: ya existe un cliente con documento %s", domain.ErrInvalidInput, key)
	}
	now := uc.now()
	customer := &entity.Customer{
		ID:          uuid.New().String(),
		ExternalKey: key,
		Name:        name,
		Email:       strings.TrimSpace(in.Email),
		Phone:       strings.TrimSpace(in.Phone),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// FindByExternalKey devuelve ErrNotFound si no hay cliente con ese documento.
func (uc *CustomerUseCase) FindByExternalKey(ctx context.Context, key string) (*entity.Customer, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, domain.ErrInvalidInput
	}
	c, err := uc.repo.FindByExternalKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("clientes: buscar %s: %w", key, err)
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// Resolve obtiene el cliente del cobro: por id si existe, o por documento
// del formulario de cliente nuevo, creándolo cuando no está registrado.
func (uc *CustomerUseCase) Resolve(ctx context.Context, customerID string, newCustomer *dto.CreateCustomerRequest) (*entity.Customer, error) {
	if customerID != "" {
		c, err := uc.repo.GetByID(ctx, customerID)
		if err != nil {
			return nil, fmt.Errorf("clientes: obtener %s: %w", customerID, err)
		}
		if c == nil {
			return nil, domain.ErrNotFound
		}
		return c, nil
	}
	if newCustomer == nil {
		return nil, domain.ErrInvalidInput
	}
	c, err := uc.FindByExternalKey(ctx, newCustomer.ExternalKey)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return uc.Create(ctx, *newCustomer)
}
