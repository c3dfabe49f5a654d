package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vintrade/parts-market/internal/domain/account"
	"github.com/vintrade/parts-market/internal/domain/product"
)

// Service is the checkout transactor. Given a buyer and a raw cart it either
// commits a consistent set of stock decrements plus order rows, or rejects
// the whole request without mutating anything.
type Service struct {
	store CheckoutStore
}

// NewService creates the checkout transactor on top of a transactional store.
func NewService(store CheckoutStore) *Service {
	return &Service{store: store}
}

// Result describes a committed checkout.
type Result struct {
	Orders []Order
}

// CreatedCount returns the number of distinct order lines committed.
func (r *Result) CreatedCount() int { return len(r.Orders) }

// Submit validates and executes a checkout.
//
// Preprocessing happens outside the transaction: authentication, the buyer
// role check, and cart normalization. The transactional body then locks every
// matching product row in VIN order and runs two explicit passes: first
// validate every line (collecting all unavailable VINs or all stock
// shortages), then write stock decrements and order rows. Any validation
// failure aborts before the first write, so a rejected checkout never leaves
// partial state behind.
func (s *Service) Submit(ctx context.Context, buyer *account.Account, items []LineItem) (*Result, error) {
	if buyer == nil {
		return nil, ErrUnauthenticated
	}
	if buyer.Type != account.TypeBuyer {
		return nil, &ForbiddenError{Type: buyer.Type}
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	cart := NormalizeCart(items)
	if cart.Empty() {
		return nil, ErrNoValidItems
	}

	var orders []Order
	err := s.store.InTx(ctx, func(tx CheckoutTx) error {
		fetched, err := tx.LockProducts(ctx, cart.VINs())
		if err != nil {
			return err
		}

		byVIN := make(map[string]product.Product, len(fetched))
		for _, p := range fetched {
			byVIN[p.VIN] = p
		}

		// Pass 1: validate every line before touching anything.
		var missing []string
		for _, line := range cart.Lines {
			if _, ok := byVIN[line.VIN]; !ok {
				missing = append(missing, line.VIN)
			}
		}
		if len(missing) > 0 {
			return &UnavailableItemsError{VINs: missing}
		}

		var shortages []StockShortage
		for _, line := range cart.Lines {
			available := byVIN[line.VIN].Available()
			if line.Qty > available {
				shortages = append(shortages, StockShortage{
					VIN:       line.VIN,
					Requested: line.Qty,
					Available: available,
				})
			}
		}
		if len(shortages) > 0 {
			return &InsufficientStockError{Shortages: shortages}
		}

		// Pass 2: all lines are satisfiable, apply the writes.
		orders = make([]Order, 0, len(cart.Lines))
		for _, line := range cart.Lines {
			p := byVIN[line.VIN]
			if err := tx.SetStock(ctx, line.VIN, p.Available()-line.Qty); err != nil {
				return err
			}
			orders = append(orders, Order{
				ID:         uuid.New().String(),
				BuyerID:    buyer.ID,
				VIN:        line.VIN,
				Quantity:   line.Qty,
				TotalPrice: p.Price.Mul(decimal.NewFromInt(int64(line.Qty))),
			})
		}
		return tx.CreateOrders(ctx, orders)
	})
	if err != nil {
		return nil, err
	}

	return &Result{Orders: orders}, nil
}
