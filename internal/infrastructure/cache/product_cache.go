package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

var _ repository.ProductRepository = (*ProductCache)(nil)

const keyPrefix = "catalogo:"

// ProductCache es un ProductRepository de lectura con caché (read-through).
// Si Redis falla se sirve desde el repositorio subyacente: la caché nunca bloquea una venta.
// Los productos inexistentes no se cachean.
type ProductCache struct {
	next  repository.ProductRepository
	store Store
	ttl   time.Duration
	log   *logger.Logger
}

// NewProductCache envuelve next con la caché.
func NewProductCache(next repository.ProductRepository, store Store, ttl time.Duration, log *logger.Logger) *ProductCache {
	if log == nil {
		log = logger.Nop()
	}
	return &ProductCache{next: next, store: store, ttl: ttl, log: log}
}

// GetByID busca primero en caché.
func (c *ProductCache) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	key := keyPrefix + "producto:" + id
	var p entity.Product
	if c.read(ctx, key, &p) {
		return &p, nil
	}
	product, err := c.next.GetByID(ctx, id)
	if err != nil || product == nil {
		return product, err
	}
	c.write(ctx, key, product)
	return product, nil
}

// Search cachea el resultado por (consulta normalizada, límite).
func (c *ProductCache) Search(ctx context.Context, query string, limit int) ([]*entity.Product, error) {
	key := fmt.Sprintf("%sbusqueda:%d:%s", keyPrefix, limit, strings.ToLower(strings.TrimSpace(query)))
	var list []*entity.Product
	if c.read(ctx, key, &list) {
		return list, nil
	}
	list, err := c.next.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	c.write(ctx, key, list)
	return list, nil
}

func (c *ProductCache) read(ctx context.Context, key string, dst any) bool {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("caché de catálogo no disponible")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("entrada de caché corrupta")
		return false
	}
	return true
}

func (c *ProductCache) write(ctx context.Context, key string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, key, payload, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("no se pudo guardar en caché")
	}
}
