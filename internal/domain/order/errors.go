package order

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"github.com/vintrade/parts-market/internal/domain/account"
)

// Sentinel errors for checkout preprocessing. All checkout errors are
// terminal: the caller must change the request before retrying.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrNoValidItems    = errors.New("no valid order items")
)

// ForbiddenError indicates the caller holds an account type that may not
// place orders. Sellers and admins are rejected alike.
type ForbiddenError struct {
	Type account.Type
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("account type %q may not place orders", e.Type)
}

// UnavailableItemsError lists every requested VIN with no matching active
// product. The list is exhaustive so the caller can fix the whole cart in one
// round trip.
type UnavailableItemsError struct {
	VINs []string
}

func (e *UnavailableItemsError) Error() string {
	return "items unavailable: " + strings.Join(e.VINs, ", ")
}

// StockShortage records one VIN whose requested quantity exceeds the sellable
// stock at the time the row was locked.
type StockShortage struct {
	VIN       string
	Requested int
	Available int
}

// InsufficientStockError carries every shortage found during validation, not
// just the first. Formatting into user-facing text happens at the HTTP
// boundary.
type InsufficientStockError struct {
	Shortages []StockShortage
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %d item(s)", len(e.Shortages))
}
