package handler

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/samber/lo"

	"github.com/vintrade/parts-market/internal/domain/account"
	"github.com/vintrade/parts-market/internal/domain/order"
	"github.com/vintrade/parts-market/internal/events"
)

// errBadPayload marks a request body that is not the expected shape. It is
// distinct from an empty cart, which gets its own response.
var errBadPayload = errors.New("invalid request payload")

// SubmitOrder handles POST /orders: the checkout endpoint. The whole request
// either commits (stock decremented, one order row per distinct VIN) or is
// rejected with no state change.
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Identity and role come before the body: an anonymous or non-buyer
	// caller gets 401/403 no matter what they posted. The service repeats
	// both guards so checkout stays safe for any other caller.
	acct := AccountFromContext(ctx)
	if acct == nil {
		h.writeLoginRequired(w, r, "Please log in to submit an order.")
		return
	}
	if acct.Type != account.TypeBuyer {
		writeError(w, r, http.StatusForbidden, "Only buyer accounts can place orders.")
		return
	}

	items, err := decodeOrderItems(r.Body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	ctx, span := tracer.Start(ctx, "checkout.submit")
	result, err := h.checkout.Submit(ctx, acct, items)
	if err != nil {
		span.RecordError(err)
		span.End()
		h.writeCheckoutError(w, r, err)
		return
	}
	span.End()

	ordersPlaced.Add(ctx, int64(result.CreatedCount()))
	var units int64
	for _, o := range result.Orders {
		units += int64(o.Quantity)
	}
	unitsSold.Add(ctx, units)

	// The transaction is committed: side channels (events, cache) run now,
	// never inside the transactor.
	if h.publisher != nil {
		h.publisher.OrderPlaced(ctx, events.OrderPlacedPayload{
			BuyerID: result.Orders[0].BuyerID,
			Lines: lo.Map(result.Orders, func(o order.Order, _ int) events.OrderLine {
				return events.OrderLine{
					OrderID:    o.ID,
					VIN:        o.VIN,
					Quantity:   o.Quantity,
					TotalPrice: o.TotalPrice.StringFixed(2),
				}
			}),
		})
	}
	if h.cache != nil {
		h.cache.Invalidate(ctx, lo.Map(result.Orders, func(o order.Order, _ int) string { return o.VIN })...)
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("message", func(e *jx.Encoder) { e.Str("Order submitted successfully.") })
			e.Field("created_count", func(e *jx.Encoder) { e.Int(result.CreatedCount()) })
		})
	})
}

// ListOrders handles GET /orders: the caller's own orders, newest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	acct := AccountFromContext(r.Context())
	if acct == nil {
		h.writeLoginRequired(w, r, "Please log in to view your orders.")
		return
	}

	orders, err := h.orders.ListByBuyer(r.Context(), acct.ID)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("orders", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, o := range orders {
						encodeOrder(e, o)
					}
				})
			})
		})
	})
}

func encodeOrder(e *jx.Encoder, o order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("sku", func(e *jx.Encoder) { e.Str(o.VIN) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(o.Quantity) })
		e.Field("total_price", func(e *jx.Encoder) { e.Str(o.TotalPrice.StringFixed(2)) })
		e.Field("is_delivered", func(e *jx.Encoder) { e.Bool(o.IsDelivered) })
		e.Field("created_at", func(e *jx.Encoder) { e.Str(o.CreatedAt.Format("2006-01-02T15:04:05Z07:00")) })
	})
}

// writeCheckoutError maps checkout domain errors to the HTTP contract.
// Shortage records are formatted into text here, at the boundary only.
func (h *Handler) writeCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrUnauthenticated):
		h.writeLoginRequired(w, r, "Please log in to submit an order.")

	case errors.Is(err, order.ErrEmptyCart):
		writeError(w, r, http.StatusBadRequest, "Cart is empty.")

	case errors.Is(err, order.ErrNoValidItems):
		writeError(w, r, http.StatusBadRequest, "No valid order items found.")

	default:
		var forbidden *order.ForbiddenError
		if errors.As(err, &forbidden) {
			writeError(w, r, http.StatusForbidden, "Only buyer accounts can place orders.")
			return
		}

		var unavailable *order.UnavailableItemsError
		if errors.As(err, &unavailable) {
			msg := "Some items are unavailable: " + strings.Join(unavailable.VINs, ", ") + "."
			writeError(w, r, http.StatusBadRequest, msg)
			return
		}

		var insufficient *order.InsufficientStockError
		if errors.As(err, &insufficient) {
			writeJSON(w, r, http.StatusBadRequest, func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					e.Field("error", func(e *jx.Encoder) { e.Str("Insufficient stock.") })
					e.Field("details", func(e *jx.Encoder) {
						e.Arr(func(e *jx.Encoder) {
							for _, s := range insufficient.Shortages {
								e.Str(fmt.Sprintf("Only %d left for %s (requested %d).", s.Available, s.VIN, s.Requested))
							}
						})
					})
				})
			})
			return
		}

		writeInternalError(w, r, err)
	}
}

func (h *Handler) writeLoginRequired(w http.ResponseWriter, r *http.Request, msg string) {
	writeJSON(w, r, http.StatusUnauthorized, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("error", func(e *jx.Encoder) { e.Str(msg) })
			e.Field("login_url", func(e *jx.Encoder) { e.Str(h.loginURL) })
		})
	})
}

// decodeOrderItems parses {"items":[{"sku":...,"qty":...},...]}. Structural
// problems (body not an object, items not an array, a sub-item not an object,
// non-coercible field types) return errBadPayload. Content problems such as
// empty SKUs or non-positive quantities are left for cart normalization.
func decodeOrderItems(body io.Reader) ([]order.LineItem, error) {
	d := jx.Decode(body, 4096)
	if d.Next() != jx.Object {
		return nil, errBadPayload
	}

	var items []order.LineItem
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "items" {
			return d.Skip()
		}
		if d.Next() != jx.Array {
			return errBadPayload
		}
		return d.Arr(func(d *jx.Decoder) error {
			if d.Next() != jx.Object {
				return errBadPayload
			}
			var it order.LineItem
			if err := d.Obj(func(d *jx.Decoder, key string) error {
				switch key {
				case "sku":
					if d.Next() != jx.String {
						return errBadPayload
					}
					s, err := d.Str()
					if err != nil {
						return err
					}
					it.SKU = s
					return nil
				case "qty":
					qty, err := decodeQty(d)
					if err != nil {
						return err
					}
					it.Qty = qty
					return nil
				default:
					return d.Skip()
				}
			}); err != nil {
				return err
			}
			items = append(items, it)
			return nil
		})
	})
	if err != nil {
		return nil, errBadPayload
	}
	return items, nil
}

// decodeQty coerces a quantity to an integer: JSON numbers are truncated,
// numeric strings parsed. Anything else is a payload error.
func decodeQty(d *jx.Decoder) (int, error) {
	switch d.Next() {
	case jx.Number:
		f, err := d.Float64()
		if err != nil {
			return 0, err
		}
		// Converting a float beyond int range is implementation-defined;
		// bound it first. In-range negatives stay, normalization drops them.
		if f < math.MinInt32 || f > math.MaxInt32 {
			return 0, errBadPayload
		}
		return int(f), nil
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, errBadPayload
		}
		return n, nil
	default:
		return 0, errBadPayload
	}
}
