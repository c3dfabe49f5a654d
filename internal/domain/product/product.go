// Package product defines the catalog side of the marketplace: parts listed
// by sellers, keyed by their 17-character VIN.
package product

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist or is not
// active.
var ErrNotFound = errors.New("product not found")

// vinPattern matches a normalized VIN: 17 characters, letters and digits,
// excluding I, O and Q.
var vinPattern = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

// NormalizeVIN trims and uppercases a raw VIN string. It does not validate.
func NormalizeVIN(vin string) string {
	return strings.ToUpper(strings.TrimSpace(vin))
}

// ValidVIN reports whether vin (already normalized) is a well-formed VIN.
func ValidVIN(vin string) bool {
	return vinPattern.MatchString(vin)
}

// Product is a catalog item. CurrentStock is nullable: a nil value means the
// product has never been sold and its availability equals InitialStock.
type Product struct {
	VIN          string
	VendorID     string
	Name         string
	Category     string
	Description  string
	Price        decimal.Decimal
	InitialStock int
	CurrentStock *int
	ReorderLevel int
	IsActive     bool
	CreatedAt    time.Time
}

// Available returns the sellable stock, falling back to InitialStock when
// CurrentStock has never been set.
func (p Product) Available() int {
	if p.CurrentStock != nil {
		return *p.CurrentStock
	}
	return p.InitialStock
}

// Repository defines read operations over the catalog.
type Repository interface {
	ListActive(ctx context.Context) ([]Product, error)
	GetByVIN(ctx context.Context, vin string) (*Product, error)
}
