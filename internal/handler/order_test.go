package handler

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vintrade/parts-market/internal/domain/account"
	"github.com/vintrade/parts-market/internal/domain/product"
)

func catalogProduct(vin, price string, stock int) product.Product {
	return product.Product{
		VIN:          vin,
		VendorID:     "33333333-3333-3333-3333-333333333333",
		Name:         "part " + vin[len(vin)-4:],
		Category:     "engine",
		Price:        decimal.RequireFromString(price),
		InitialStock: stock,
		IsActive:     true,
	}
}

func TestSubmitOrder_Success(t *testing.T) {
	f := newFixture(
		catalogProduct("1HGCM82633A004352", "49.99", 3),
		catalogProduct("3VWFE21C04M000341", "12.50", 7),
	)
	token := f.session(testBuyer())

	w := f.do(t, http.MethodPost, "/orders", token,
		`{"items":[{"sku":"1hgcm82633a004352","qty":3},{"sku":"3VWFE21C04M000341","qty":2}]}`)

	requireStatus(t, w, http.StatusOK)
	assert.JSONEq(t, `{"message":"Order submitted successfully.","created_count":2}`, w.Body.String())

	require.NotNil(t, f.products.products["1HGCM82633A004352"].CurrentStock)
	assert.Equal(t, 0, *f.products.products["1HGCM82633A004352"].CurrentStock)
	assert.Equal(t, 5, *f.products.products["3VWFE21C04M000341"].CurrentStock)
	assert.ElementsMatch(t, []string{"1HGCM82633A004352", "3VWFE21C04M000341"}, f.cache.invalidated)
}

func TestSubmitOrder_QuantityCoercion(t *testing.T) {
	f := newFixture(catalogProduct("1HGCM82633A004352", "49.99", 10))
	token := f.session(testBuyer())

	// Numeric strings and float quantities are coerced to integers.
	w := f.do(t, http.MethodPost, "/orders", token,
		`{"items":[{"sku":"1HGCM82633A004352","qty":"2"},{"sku":"1HGCM82633A004352","qty":1.9}]}`)

	requireStatus(t, w, http.StatusOK)
	assert.JSONEq(t, `{"message":"Order submitted successfully.","created_count":1}`, w.Body.String())
	assert.Equal(t, 7, *f.products.products["1HGCM82633A004352"].CurrentStock)
}

func TestSubmitOrder_Unauthenticated(t *testing.T) {
	f := newFixture(catalogProduct("1HGCM82633A004352", "49.99", 3))

	w := f.do(t, http.MethodPost, "/orders", "",
		`{"items":[{"sku":"1HGCM82633A004352","qty":1}]}`)

	requireStatus(t, w, http.StatusUnauthorized)
	assert.JSONEq(t, `{"error":"Please log in to submit an order.","login_url":"/login"}`, w.Body.String())
}

func TestSubmitOrder_UnknownTokenIsAnonymous(t *testing.T) {
	f := newFixture(catalogProduct("1HGCM82633A004352", "49.99", 3))

	w := f.do(t, http.MethodPost, "/orders", "not-a-session",
		`{"items":[{"sku":"1HGCM82633A004352","qty":1}]}`)

	requireStatus(t, w, http.StatusUnauthorized)
}

func TestSubmitOrder_ForbiddenForSeller(t *testing.T) {
	f := newFixture(catalogProduct("1HGCM82633A004352", "49.99", 3))
	seller := &account.Account{ID: "44444444-4444-4444-4444-444444444444", Username: "seller1", Type: account.TypeSeller}
	token := f.session(seller)

	w := f.do(t, http.MethodPost, "/orders", token,
		`{"items":[{"sku":"1HGCM82633A004352","qty":1}]}`)

	requireStatus(t, w, http.StatusForbidden)
	assert.JSONEq(t, `{"error":"Only buyer accounts can place orders."}`, w.Body.String())
}

func TestSubmitOrder_InvalidPayloads(t *testing.T) {
	f := newFixture(catalogProduct("1HGCM82633A004352", "49.99", 3))
	token := f.session(testBuyer())

	cases := map[string]string{
		"top level array":     `[{"sku":"1HGCM82633A004352","qty":1}]`,
		"items not an array":  `{"items":{"sku":"1HGCM82633A004352"}}`,
		"sub item not object": `{"items":["1HGCM82633A004352"]}`,
		"sku not a string":    `{"items":[{"sku":42,"qty":1}]}`,
		"qty not coercible":   `{"items":[{"sku":"1HGCM82633A004352","qty":"lots"}]}`,
		"qty is an object":    `{"items":[{"sku":"1HGCM82633A004352","qty":{}}]}`,
		"qty above int range": `{"items":[{"sku":"1HGCM82633A004352","qty":1e30}]}`,
		"qty below int range": `{"items":[{"sku":"1HGCM82633A004352","qty":-1e30}]}`,
		"not json":            `not json at all`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/orders", token, body)
			requireStatus(t, w, http.StatusBadRequest)
			assert.JSONEq(t, `{"error":"Invalid request payload."}`, w.Body.String())
		})
	}
}

func TestSubmitOrder_NegativeQtyIsDiscardedNotRejected(t *testing.T) {
	f := newFixture()
	token := f.session(testBuyer())

	// An in-range negative quantity is a content problem, not a shape problem.
	w := f.do(t, http.MethodPost, "/orders", token,
		`{"items":[{"sku":"1HGCM82633A004352","qty":-2}]}`)

	requireStatus(t, w, http.StatusBadRequest)
	assert.JSONEq(t, `{"error":"No valid order items found."}`, w.Body.String())
}

func TestSubmitOrder_AuthPrecedesPayload(t *testing.T) {
	f := newFixture(catalogProduct("1HGCM82633A004352", "49.99", 3))
	const malformed = `[{"sku":"1HGCM82633A004352","qty":1}]`

	// Anonymous callers get 401 even when the body is garbage.
	w := f.do(t, http.MethodPost, "/orders", "", malformed)
	requireStatus(t, w, http.StatusUnauthorized)
	assert.JSONEq(t, `{"error":"Please log in to submit an order.","login_url":"/login"}`, w.Body.String())

	// Non-buyers get 403 even when the body is garbage.
	seller := &account.Account{ID: "77777777-7777-7777-7777-777777777777", Username: "seller2", Type: account.TypeSeller}
	w = f.do(t, http.MethodPost, "/orders", f.session(seller), malformed)
	requireStatus(t, w, http.StatusForbidden)
	assert.JSONEq(t, `{"error":"Only buyer accounts can place orders."}`, w.Body.String())

	w = f.do(t, http.MethodPost, "/orders", f.session(testAdmin()), malformed)
	requireStatus(t, w, http.StatusForbidden)
}

func TestSubmitOrder_EmptyCart(t *testing.T) {
	f := newFixture()
	token := f.session(testBuyer())

	w := f.do(t, http.MethodPost, "/orders", token, `{"items":[]}`)

	requireStatus(t, w, http.StatusBadRequest)
	assert.JSONEq(t, `{"error":"Cart is empty."}`, w.Body.String())
}

func TestSubmitOrder_NoValidItems(t *testing.T) {
	f := newFixture()
	token := f.session(testBuyer())

	w := f.do(t, http.MethodPost, "/orders", token,
		`{"items":[{"sku":"","qty":2},{"sku":"1HGCM82633A004352","qty":0}]}`)

	requireStatus(t, w, http.StatusBadRequest)
	assert.JSONEq(t, `{"error":"No valid order items found."}`, w.Body.String())
}

func TestSubmitOrder_UnavailableItems(t *testing.T) {
	f := newFixture(catalogProduct("1HGCM82633A004352", "49.99", 3))
	token := f.session(testBuyer())

	w := f.do(t, http.MethodPost, "/orders", token,
		`{"items":[{"sku":"1HGCM82633A004352","qty":1},{"sku":"5YJSA1E26MF410322","qty":1},{"sku":"3VWFE21C04M000341","qty":1}]}`)

	requireStatus(t, w, http.StatusBadRequest)
	assert.JSONEq(t,
		`{"error":"Some items are unavailable: 3VWFE21C04M000341, 5YJSA1E26MF410322."}`,
		w.Body.String())
	assert.Empty(t, f.store.orders)
}

func TestSubmitOrder_InsufficientStock(t *testing.T) {
	f := newFixture(
		catalogProduct("1HGCM82633A004352", "49.99", 3),
		catalogProduct("3VWFE21C04M000341", "12.50", 1),
	)
	token := f.session(testBuyer())

	w := f.do(t, http.MethodPost, "/orders", token,
		`{"items":[{"sku":"1HGCM82633A004352","qty":4},{"sku":"3VWFE21C04M000341","qty":2}]}`)

	requireStatus(t, w, http.StatusBadRequest)
	assert.JSONEq(t, `{
		"error": "Insufficient stock.",
		"details": [
			"Only 3 left for 1HGCM82633A004352 (requested 4).",
			"Only 1 left for 3VWFE21C04M000341 (requested 2)."
		]
	}`, w.Body.String())

	// Nothing committed, nothing invalidated.
	assert.Nil(t, f.products.products["1HGCM82633A004352"].CurrentStock)
	assert.Empty(t, f.cache.invalidated)
}

func TestListOrders_RequiresLogin(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodGet, "/orders", "", "")

	requireStatus(t, w, http.StatusUnauthorized)
	assert.JSONEq(t, `{"error":"Please log in to view your orders.","login_url":"/login"}`, w.Body.String())
}

func TestListOrders_ReturnsOwnOrders(t *testing.T) {
	f := newFixture(catalogProduct("1HGCM82633A004352", "49.99", 5))
	buyer := testBuyer()
	token := f.session(buyer)

	w := f.do(t, http.MethodPost, "/orders", token,
		`{"items":[{"sku":"1HGCM82633A004352","qty":2}]}`)
	requireStatus(t, w, http.StatusOK)

	f.orders.byBuyer[buyer.ID] = f.store.orders
	w = f.do(t, http.MethodGet, "/orders", token, "")

	requireStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), `"sku":"1HGCM82633A004352"`)
	assert.Contains(t, w.Body.String(), `"total_price":"99.98"`)
}
