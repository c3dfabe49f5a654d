package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"

	"github.com/vintrade/parts-market/internal/domain/account"
	"github.com/vintrade/parts-market/internal/domain/contact"
)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// SubmitContactMessage handles POST /contact. Works for anonymous visitors;
// authenticated submissions are linked to the account.
func (h *Handler) SubmitContactMessage(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	msg := &contact.Message{
		ID:      uuid.New().String(),
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Body:    req.Message,
	}
	if acct := AccountFromContext(r.Context()); acct != nil {
		msg.AccountID = acct.ID
	}

	if err := msg.Validate(); err != nil {
		if errors.Is(err, contact.ErrMissingFields) || errors.Is(err, contact.ErrInvalidEmail) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		writeInternalError(w, r, err)
		return
	}

	if err := h.contacts.Create(r.Context(), msg); err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("message", func(e *jx.Encoder) { e.Str("Message received.") })
			e.Field("id", func(e *jx.Encoder) { e.Str(msg.ID) })
		})
	})
}

// ListUnseenMessages handles GET /admin/messages. Admin only.
func (h *Handler) ListUnseenMessages(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	messages, err := h.contacts.ListUnseen(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("messages", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, m := range messages {
						encodeMessage(e, m)
					}
				})
			})
		})
	})
}

// MarkMessageSeen handles POST /admin/messages/{id}/seen. Admin only.
func (h *Handler) MarkMessageSeen(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid message ID.")
		return
	}

	updated, err := h.contacts.MarkSeen(r.Context(), id)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	if !updated {
		writeError(w, r, http.StatusNotFound, "Message not found.")
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("message", func(e *jx.Encoder) { e.Str("Message marked as seen.") })
		})
	})
}

func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	acct := AccountFromContext(r.Context())
	if acct == nil {
		h.writeLoginRequired(w, r, "Please log in.")
		return false
	}
	if acct.Type != account.TypeAdmin {
		writeError(w, r, http.StatusForbidden, "Admin access required.")
		return false
	}
	return true
}

func encodeMessage(e *jx.Encoder, m contact.Message) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(m.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(m.Name) })
		e.Field("email", func(e *jx.Encoder) { e.Str(m.Email) })
		e.Field("subject", func(e *jx.Encoder) { e.Str(m.Subject) })
		e.Field("message", func(e *jx.Encoder) { e.Str(m.Body) })
		e.Field("created_at", func(e *jx.Encoder) { e.Str(m.CreatedAt.Format("2006-01-02T15:04:05Z07:00")) })
	})
}
