// Package cache provides a Redis read-through cache for the product catalog,
// with a bloom filter guarding lookups of VINs that were never listed.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/vintrade/parts-market/internal/domain/product"
)

const (
	// keyProduct caches a single product JSON blob: product:{vin}.
	keyProduct = "product:%s"

	productTTL = 5 * time.Minute

	// Sized for a full catalog with growth headroom.
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
)

var _ product.Repository = (*ProductCache)(nil)

// ProductCache wraps a product.Repository with a Redis cache for GetByVIN.
// A bloom filter of known VINs short-circuits lookups for VINs that were
// never in the catalog, so junk requests skip both Redis and the database.
//
// The filter is warmed from the repository at startup and extended on every
// database hit. Catalog writes happen through the seed and import tools, so
// the API process re-warms on restart.
type ProductCache struct {
	inner product.Repository
	rdb   *redis.Client

	mu    sync.RWMutex
	known *bloom.BloomFilter
}

// NewProductCache builds the cache and warms the bloom filter with every
// active VIN currently in the catalog.
func NewProductCache(ctx context.Context, inner product.Repository, rdb *redis.Client) (*ProductCache, error) {
	c := &ProductCache{
		inner: inner,
		rdb:   rdb,
		known: bloom.NewWithEstimates(bloomCapacity, bloomFPR),
	}

	products, err := inner.ListActive(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "warm product cache")
	}
	for _, p := range products {
		c.known.AddString(p.VIN)
	}
	return c, nil
}

// ListActive passes through: the listing is served straight from the
// database, only point lookups are cached.
func (c *ProductCache) ListActive(ctx context.Context) ([]product.Product, error) {
	return c.inner.ListActive(ctx)
}

// GetByVIN serves a product from Redis when possible, falling back to the
// inner repository and caching the result. Redis errors degrade to direct
// database reads rather than failing the request.
func (c *ProductCache) GetByVIN(ctx context.Context, vin string) (*product.Product, error) {
	c.mu.RLock()
	unknown := !c.known.TestString(vin)
	c.mu.RUnlock()
	if unknown {
		return nil, product.ErrNotFound
	}

	key := fmt.Sprintf(keyProduct, vin)
	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		if p, err := decodeProduct(raw); err == nil {
			return p, nil
		}
	}

	p, err := c.inner.GetByVIN(ctx, vin)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.known.AddString(p.VIN)
	c.mu.Unlock()

	if raw, err := encodeProduct(p); err == nil {
		_ = c.rdb.Set(ctx, key, raw, productTTL).Err()
	}
	return p, nil
}

// Invalidate drops the cached entry for a VIN. Called after checkout commits
// so catalog reads do not serve stale stock for the cache TTL.
func (c *ProductCache) Invalidate(ctx context.Context, vins ...string) {
	for _, vin := range vins {
		_ = c.rdb.Del(ctx, fmt.Sprintf(keyProduct, vin)).Err()
	}
}

// cachedProduct is the Redis serialization of a product. Price travels as a
// string to keep decimal exactness.
type cachedProduct struct {
	VIN          string    `json:"vin"`
	VendorID     string    `json:"vendor_id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	Price        string    `json:"price"`
	InitialStock int       `json:"initial_stock"`
	CurrentStock *int      `json:"current_stock"`
	ReorderLevel int       `json:"reorder_level"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

func encodeProduct(p *product.Product) ([]byte, error) {
	return json.Marshal(cachedProduct{
		VIN:          p.VIN,
		VendorID:     p.VendorID,
		Name:         p.Name,
		Category:     p.Category,
		Description:  p.Description,
		Price:        p.Price.String(),
		InitialStock: p.InitialStock,
		CurrentStock: p.CurrentStock,
		ReorderLevel: p.ReorderLevel,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
	})
}

func decodeProduct(raw []byte) (*product.Product, error) {
	var c cachedProduct
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(c.Price)
	if err != nil {
		return nil, err
	}
	return &product.Product{
		VIN:          c.VIN,
		VendorID:     c.VendorID,
		Name:         c.Name,
		Category:     c.Category,
		Description:  c.Description,
		Price:        price,
		InitialStock: c.InitialStock,
		CurrentStock: c.CurrentStock,
		ReorderLevel: c.ReorderLevel,
		IsActive:     c.IsActive,
		CreatedAt:    c.CreatedAt,
	}, nil
}
