package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vintrade/parts-market/internal/domain/account"
	"github.com/vintrade/parts-market/internal/domain/contact"
	"github.com/vintrade/parts-market/internal/domain/order"
	"github.com/vintrade/parts-market/internal/domain/product"
)

const testPepper = "test-pepper"

type stubProducts struct {
	products map[string]*product.Product
	listErr  error
}

func (s *stubProducts) ListActive(context.Context) ([]product.Product, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []product.Product
	for _, p := range s.products {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *stubProducts) GetByVIN(_ context.Context, vin string) (*product.Product, error) {
	if p, ok := s.products[vin]; ok && p.IsActive {
		cp := *p
		return &cp, nil
	}
	return nil, product.ErrNotFound
}

// stubStore backs the checkout service with the stubProducts catalog.
// Staged writes are applied only when the transactional callback succeeds.
type stubStore struct {
	products *stubProducts
	orders   []order.Order
}

func (s *stubStore) InTx(_ context.Context, fn func(tx order.CheckoutTx) error) error {
	tx := &stubTx{store: s, stock: make(map[string]int)}
	if err := fn(tx); err != nil {
		return err
	}
	for vin, stock := range tx.stock {
		v := stock
		s.products.products[vin].CurrentStock = &v
	}
	s.orders = append(s.orders, tx.created...)
	return nil
}

type stubTx struct {
	store   *stubStore
	stock   map[string]int
	created []order.Order
}

func (tx *stubTx) LockProducts(_ context.Context, vins []string) ([]product.Product, error) {
	var out []product.Product
	for _, vin := range vins {
		if p, ok := tx.store.products.products[vin]; ok && p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (tx *stubTx) SetStock(_ context.Context, vin string, stock int) error {
	tx.stock[vin] = stock
	return nil
}

func (tx *stubTx) CreateOrders(_ context.Context, orders []order.Order) error {
	tx.created = append(tx.created, orders...)
	return nil
}

type stubOrders struct {
	byBuyer map[string][]order.Order
}

func (s *stubOrders) ListByBuyer(_ context.Context, buyerID string) ([]order.Order, error) {
	return s.byBuyer[buyerID], nil
}

type stubContacts struct {
	created []contact.Message
	unseen  []contact.Message
}

func (s *stubContacts) Create(_ context.Context, m *contact.Message) error {
	s.created = append(s.created, *m)
	return nil
}

func (s *stubContacts) ListUnseen(context.Context) ([]contact.Message, error) {
	return s.unseen, nil
}

func (s *stubContacts) MarkSeen(_ context.Context, id string) (bool, error) {
	for i := range s.unseen {
		if s.unseen[i].ID == id {
			s.unseen[i].Seen = true
			return true, nil
		}
	}
	return false, nil
}

type stubCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (s *stubCache) Invalidate(_ context.Context, vins ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated = append(s.invalidated, vins...)
}

type stubAccounts struct {
	byHash map[string]*account.Account
}

func (s *stubAccounts) FindBySessionHash(_ context.Context, hash string) (*account.Account, error) {
	if a, ok := s.byHash[hash]; ok {
		return a, nil
	}
	return nil, account.ErrSessionNotFound
}

type fixture struct {
	products *stubProducts
	store    *stubStore
	orders   *stubOrders
	contacts *stubContacts
	cache    *stubCache
	accounts *stubAccounts
	router   http.Handler
}

func newFixture(products ...product.Product) *fixture {
	f := &fixture{
		products: &stubProducts{products: make(map[string]*product.Product)},
		orders:   &stubOrders{byBuyer: make(map[string][]order.Order)},
		contacts: &stubContacts{},
		cache:    &stubCache{},
		accounts: &stubAccounts{byHash: make(map[string]*account.Account)},
	}
	for i := range products {
		p := products[i]
		f.products.products[p.VIN] = &p
	}
	f.store = &stubStore{products: f.products}

	h := NewHandler(
		Config{LoginURL: "/login"},
		f.products,
		f.orders,
		order.NewService(f.store),
		f.contacts,
		nil,
		f.cache,
	)
	auth := NewAuthenticator(f.accounts, []byte(testPepper))
	f.router = h.Routes(auth.Middleware())
	return f
}

// session registers an account and returns a bearer token for it.
func (f *fixture) session(acct *account.Account) string {
	token := "tok-" + acct.ID
	mac := hmac.New(sha256.New, []byte(testPepper))
	mac.Write([]byte(token))
	f.accounts.byHash[hex.EncodeToString(mac.Sum(nil))] = acct
	return token
}

func (f *fixture) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func testBuyer() *account.Account {
	return &account.Account{ID: "11111111-1111-1111-1111-111111111111", Username: "buyer1", Type: account.TypeBuyer}
}

func testAdmin() *account.Account {
	return &account.Account{ID: "22222222-2222-2222-2222-222222222222", Username: "admin1", Type: account.TypeAdmin}
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}
