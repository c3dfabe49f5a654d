package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListProducts(t *testing.T) {
	f := newFixture(catalogProduct("1HGCM82633A004352", "49.99", 3))

	w := f.do(t, http.MethodGet, "/products", "", "")

	requireStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), `"sku":"1HGCM82633A004352"`)
	assert.Contains(t, w.Body.String(), `"price":"49.99"`)
	assert.Contains(t, w.Body.String(), `"available":3`)
}

func TestGetProduct(t *testing.T) {
	f := newFixture(catalogProduct("1HGCM82633A004352", "49.99", 3))

	// Lowercase VINs resolve after normalization.
	w := f.do(t, http.MethodGet, "/products/1hgcm82633a004352", "", "")

	requireStatus(t, w, http.StatusOK)
	assert.JSONEq(t, `{
		"sku": "1HGCM82633A004352",
		"name": "part 4352",
		"category": "engine",
		"description": "",
		"price": "49.99",
		"available": 3,
		"is_active": true
	}`, w.Body.String())
}

func TestGetProduct_CurrentStockWins(t *testing.T) {
	p := catalogProduct("1HGCM82633A004352", "49.99", 10)
	current := 2
	p.CurrentStock = &current
	f := newFixture(p)

	w := f.do(t, http.MethodGet, "/products/1HGCM82633A004352", "", "")

	requireStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), `"available":2`)
}

func TestGetProduct_InvalidVIN(t *testing.T) {
	f := newFixture()

	for _, vin := range []string{"short", "1HGCM82633A00435I", "1HGCM82633A0043522"} {
		w := f.do(t, http.MethodGet, "/products/"+vin, "", "")
		requireStatus(t, w, http.StatusBadRequest)
		assert.JSONEq(t, `{"error":"Invalid VIN."}`, w.Body.String())
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodGet, "/products/1HGCM82633A004352", "", "")

	requireStatus(t, w, http.StatusNotFound)
	assert.JSONEq(t, `{"error":"Product not found."}`, w.Body.String())
}
