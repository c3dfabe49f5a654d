// Package handler exposes the marketplace over JSON HTTP.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vintrade/parts-market/internal/domain/contact"
	"github.com/vintrade/parts-market/internal/domain/order"
	"github.com/vintrade/parts-market/internal/domain/product"
	"github.com/vintrade/parts-market/internal/events"
)

// CacheInvalidator drops cached catalog entries after stock changes.
// Satisfied by cache.ProductCache; a nil value disables invalidation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, vins ...string)
}

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// LoginURL is included in 401 responses so clients know where to send
	// unauthenticated users.
	LoginURL string
}

// Handler implements the marketplace HTTP API, delegating business logic to
// the checkout service and domain repositories.
type Handler struct {
	products  product.Repository
	orders    order.Repository
	checkout  *order.Service
	contacts  contact.Repository
	publisher *events.Publisher
	cache     CacheInvalidator
	loginURL  string
}

// NewHandler constructs a Handler with the required domain dependencies.
// publisher and cache may be nil.
func NewHandler(
	cfg Config,
	products product.Repository,
	orders order.Repository,
	checkout *order.Service,
	contacts contact.Repository,
	publisher *events.Publisher,
	cache CacheInvalidator,
) *Handler {
	return &Handler{
		products:  products,
		orders:    orders,
		checkout:  checkout,
		contacts:  contacts,
		publisher: publisher,
		cache:     cache,
		loginURL:  cfg.LoginURL,
	}
}

// Routes mounts all API endpoints on a chi router. The auth middleware runs
// on every route; role enforcement happens per-endpoint.
func (h *Handler) Routes(auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth)

	r.Get("/products", h.ListProducts)
	r.Get("/products/{vin}", h.GetProduct)

	r.Post("/orders", h.SubmitOrder)
	r.Get("/orders", h.ListOrders)

	r.Post("/contact", h.SubmitContactMessage)
	r.Get("/admin/messages", h.ListUnseenMessages)
	r.Post("/admin/messages/{id}/seen", h.MarkMessageSeen)

	return r
}
