package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// Create persiste un nuevo cliente. external_key es único.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO customers (id, external_key, name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.ExternalKey, c.Name, nullIfEmpty(c.Email), nullIfEmpty(c.Phone), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: cliente %s ya existe", domain.ErrInvalidInput, c.ExternalKey)
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// FindByExternalKey busca por documento de identidad.
func (r *CustomerRepo) FindByExternalKey(ctx context.Context, key string) (*entity.Customer, error) {
	return r.getOne(ctx, `WHERE external_key = $1`, key)
}

func (r *CustomerRepo) getOne(ctx context.Context, where string, arg any) (*entity.Customer, error) {
	var c entity.Customer
	var email, phone *string
	err := r.q.QueryRow(ctx, `
		SELECT id, external_key, name, email, phone, created_at, updated_at
		FROM customers `+where, arg).Scan(
		&c.ID, &c.ExternalKey, &c.Name, &email, &phone, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	c.Email = derefString(email)
	c.Phone = derefString(phone)
	return &c, nil
}
