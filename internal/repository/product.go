package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vintrade/parts-market/internal/domain/product"
)

const (
	productColumns = `vin, vendor_id, name, category, description, price,
		initial_stock, current_stock, reorder_level, is_active, created_at`

	listActiveProductsSQL = `SELECT ` + productColumns + `
		FROM products WHERE is_active ORDER BY created_at DESC`

	getProductByVINSQL = `SELECT ` + productColumns + `
		FROM products WHERE vin = $1 AND is_active`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// ListActive returns all active products, newest first.
func (r *ProductRepository) ListActive(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listActiveProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByVIN returns a single active product by its VIN.
func (r *ProductRepository) GetByVIN(ctx context.Context, vin string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByVINSQL, vin)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", vin, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", vin, err)
	}
	return &p, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.VIN, &p.VendorID, &p.Name, &p.Category, &p.Description, &p.Price,
		&p.InitialStock, &p.CurrentStock, &p.ReorderLevel, &p.IsActive, &p.CreatedAt,
	)
	return p, err
}
