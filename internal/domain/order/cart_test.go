package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCart_MergesDuplicates(t *testing.T) {
	cart := NormalizeCart([]LineItem{
		{SKU: "1HGCM82633A004352", Qty: 2},
		{SKU: "1hgcm82633a004352", Qty: 3},
	})

	assert.Equal(t, []Line{{VIN: "1HGCM82633A004352", Qty: 5}}, cart.Lines)
}

func TestNormalizeCart_TrimsAndUppercases(t *testing.T) {
	cart := NormalizeCart([]LineItem{
		{SKU: "  2t1burhe5jc014906 ", Qty: 1},
	})

	assert.Equal(t, []Line{{VIN: "2T1BURHE5JC014906", Qty: 1}}, cart.Lines)
}

func TestNormalizeCart_DiscardsInvalidEntries(t *testing.T) {
	cart := NormalizeCart([]LineItem{
		{SKU: "", Qty: 3},
		{SKU: "   ", Qty: 3},
		{SKU: "1HGCM82633A004352", Qty: 0},
		{SKU: "2T1BURHE5JC014906", Qty: -2},
	})

	assert.True(t, cart.Empty())
}

func TestNormalizeCart_SortsByVIN(t *testing.T) {
	cart := NormalizeCart([]LineItem{
		{SKU: "5YJSA1E26MF410322", Qty: 1},
		{SKU: "1HGCM82633A004352", Qty: 1},
		{SKU: "3VWFE21C04M000341", Qty: 1},
	})

	assert.Equal(t, []string{
		"1HGCM82633A004352",
		"3VWFE21C04M000341",
		"5YJSA1E26MF410322",
	}, cart.VINs())
}

func TestNormalizeCart_KeepsValidAmongInvalid(t *testing.T) {
	cart := NormalizeCart([]LineItem{
		{SKU: "", Qty: 5},
		{SKU: "1HGCM82633A004352", Qty: 2},
		{SKU: "1HGCM82633A004352", Qty: -1},
	})

	assert.Equal(t, []Line{{VIN: "1HGCM82633A004352", Qty: 2}}, cart.Lines)
}
