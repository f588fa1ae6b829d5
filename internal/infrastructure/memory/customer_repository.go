package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo clientes en memoria.
type CustomerRepo struct {
	s *Store
}

func (r *CustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	if c == nil || c.ID == "" {
		return domain.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ExternalKey != "" {
		for _, existing := range r.s.customers {
			if existing.ExternalKey == c.ExternalKey {
				return fmt.Errorf("cliente con documento %s ya existe: %w", c.ExternalKey, domain.ErrInvalidInput)
			}
		}
	}
	r.s.customers[c.ID] = *c
	return nil
}

func (r *CustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *CustomerRepo) FindByExternalKey(_ context.Context, key string) (*entity.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.customers {
		if c.ExternalKey == key {
			return &c, nil
		}
	}
	return nil, nil
}
