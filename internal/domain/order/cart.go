package order

import (
	"sort"

	"github.com/vintrade/parts-market/internal/domain/product"
)

// LineItem is a raw submitted cart entry, before normalization.
type LineItem struct {
	SKU string
	Qty int
}

// Line is a normalized cart entry: uppercased VIN, positive quantity.
type Line struct {
	VIN string
	Qty int
}

// CartRequest is a normalized, deduplicated cart. Lines are sorted by VIN;
// that order doubles as the row-lock acquisition order during checkout.
type CartRequest struct {
	Lines []Line
}

// Empty reports whether normalization left no usable lines.
func (c CartRequest) Empty() bool { return len(c.Lines) == 0 }

// VINs returns the requested VINs in ascending order.
func (c CartRequest) VINs() []string {
	vins := make([]string, len(c.Lines))
	for i, l := range c.Lines {
		vins[i] = l.VIN
	}
	return vins
}

// NormalizeCart turns raw submitted items into a CartRequest: VINs are
// trimmed and uppercased, entries with an empty VIN or non-positive quantity
// are discarded, and duplicate VINs are merged by summing quantities.
func NormalizeCart(items []LineItem) CartRequest {
	merged := make(map[string]int, len(items))
	for _, it := range items {
		vin := product.NormalizeVIN(it.SKU)
		if vin == "" || it.Qty <= 0 {
			continue
		}
		merged[vin] += it.Qty
	}

	lines := make([]Line, 0, len(merged))
	for vin, qty := range merged {
		lines = append(lines, Line{VIN: vin, Qty: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].VIN < lines[j].VIN })

	return CartRequest{Lines: lines}
}
