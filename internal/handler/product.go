package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/vintrade/parts-market/internal/domain/product"
)

// ListProducts handles GET /products: all active catalog entries.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListActive(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("products", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, p := range products {
						encodeProduct(e, p)
					}
				})
			})
		})
	})
}

// GetProduct handles GET /products/{vin}. VINs are normalized before lookup
// so lowercase requests still resolve.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	vin := product.NormalizeVIN(chi.URLParam(r, "vin"))
	if !product.ValidVIN(vin) {
		writeError(w, r, http.StatusBadRequest, "Invalid VIN.")
		return
	}

	p, err := h.products.GetByVIN(r.Context(), vin)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "Product not found.")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		encodeProduct(e, *p)
	})
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("sku", func(e *jx.Encoder) { e.Str(p.VIN) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("category", func(e *jx.Encoder) { e.Str(p.Category) })
		e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
		e.Field("price", func(e *jx.Encoder) { e.Str(p.Price.StringFixed(2)) })
		e.Field("available", func(e *jx.Encoder) { e.Int(p.Available()) })
		e.Field("is_active", func(e *jx.Encoder) { e.Bool(p.IsActive) })
	})
}
