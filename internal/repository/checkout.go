package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vintrade/parts-market/internal/domain/order"
	"github.com/vintrade/parts-market/internal/domain/product"
)

const (
	// ORDER BY vin makes the FOR UPDATE lock acquisition order deterministic,
	// so two checkouts with overlapping carts always lock rows in the same
	// sequence and cannot deadlock each other.
	lockProductsSQL = `SELECT ` + productColumns + `
		FROM products WHERE vin = ANY($1) AND is_active
		ORDER BY vin
		FOR UPDATE`

	setStockSQL = `UPDATE products SET current_stock = $2, updated_at = now() WHERE vin = $1`

	createOrderSQL = `INSERT INTO orders (id, buyer_id, vin, quantity, total_price)
		VALUES ($1, $2, $3, $4, $5)`
)

var _ order.CheckoutStore = (*CheckoutStore)(nil)

// CheckoutStore implements order.CheckoutStore backed by PostgreSQL.
type CheckoutStore struct {
	pool *pgxpool.Pool
}

// NewCheckoutStore returns a CheckoutStore that uses the given pool.
func NewCheckoutStore(pool *pgxpool.Pool) *CheckoutStore {
	return &CheckoutStore{pool: pool}
}

// InTx runs fn inside a single transaction. A non-nil error from fn rolls
// everything back; domain errors pass through unwrapped so the service layer
// can match on them.
func (s *CheckoutStore) InTx(ctx context.Context, fn func(tx order.CheckoutTx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning checkout tx: %w", err)
	}
	// Rollback after a successful commit is a no-op (pgx.ErrTxClosed).
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&checkoutTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing checkout tx: %w", err)
	}
	return nil
}

// checkoutTx scopes the checkout operations to one pgx transaction.
type checkoutTx struct {
	tx pgx.Tx
}

func (t *checkoutTx) LockProducts(ctx context.Context, vins []string) ([]product.Product, error) {
	rows, err := t.tx.Query(ctx, lockProductsSQL, vins)
	if err != nil {
		return nil, fmt.Errorf("locking products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

func (t *checkoutTx) SetStock(ctx context.Context, vin string, stock int) error {
	ct, err := t.tx.Exec(ctx, setStockSQL, vin, stock)
	if err != nil {
		return fmt.Errorf("updating stock for %q: %w", vin, err)
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("updating stock for %q: no row updated", vin)
	}
	return nil
}

func (t *checkoutTx) CreateOrders(ctx context.Context, orders []order.Order) error {
	batch := &pgx.Batch{}
	for _, o := range orders {
		batch.Queue(createOrderSQL, o.ID, o.BuyerID, o.VIN, o.Quantity, o.TotalPrice)
	}

	results := t.tx.SendBatch(ctx, batch)
	defer results.Close()

	for _, o := range orders {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("creating order %q: %w", o.ID, err)
		}
	}
	return results.Close()
}
