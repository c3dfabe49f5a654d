// Package order implements order records and the checkout transactor: the
// single place where stock is decremented and orders are created.
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vintrade/parts-market/internal/domain/product"
)

// Order is a single purchased line: one buyer, one product, one quantity.
// Immutable once created except for the delivery flag, which is managed
// outside this package.
type Order struct {
	ID          string
	BuyerID     string
	VIN         string
	Quantity    int
	TotalPrice  decimal.Decimal
	IsDelivered bool
	CreatedAt   time.Time
}

// Repository defines read operations over persisted orders.
type Repository interface {
	ListByBuyer(ctx context.Context, buyerID string) ([]Order, error)
}

// CheckoutTx is the set of operations available inside a checkout
// transaction. Implementations must scope every call to the same underlying
// database transaction.
type CheckoutTx interface {
	// LockProducts fetches the active products matching vins and acquires
	// exclusive row locks on them, in ascending VIN order so that concurrent
	// checkouts with overlapping carts cannot deadlock. VINs with no active
	// product are silently absent from the result.
	LockProducts(ctx context.Context, vins []string) ([]product.Product, error)

	// SetStock writes the new current stock for a locked product.
	SetStock(ctx context.Context, vin string, stock int) error

	// CreateOrders inserts the given order rows.
	CreateOrders(ctx context.Context, orders []Order) error
}

// CheckoutStore begins and finishes checkout transactions. A non-nil error
// from fn rolls the whole transaction back; stock and orders are only visible
// to other requests after a successful commit.
type CheckoutStore interface {
	InTx(ctx context.Context, fn func(tx CheckoutTx) error) error
}
