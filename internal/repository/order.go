package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vintrade/parts-market/internal/domain/order"
)

const listOrdersByBuyerSQL = `SELECT id, buyer_id, vin, quantity, total_price, is_delivered, created_at
	FROM orders WHERE buyer_id = $1 ORDER BY created_at DESC`

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements the order read side backed by PostgreSQL.
// Order rows are only ever created through CheckoutStore.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// ListByBuyer returns the buyer's orders, newest first.
func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByBuyerSQL, buyerID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for %q: %w", buyerID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Order, error) {
		var o order.Order
		err := row.Scan(&o.ID, &o.BuyerID, &o.VIN, &o.Quantity, &o.TotalPrice, &o.IsDelivered, &o.CreatedAt)
		return o, err
	})
}
