// Package contact holds visitor messages addressed to the marketplace admins.
package contact

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// Validation errors for submitted messages.
var (
	ErrMissingFields = errors.New("name, email, subject and message are required")
	ErrInvalidEmail  = errors.New("email address is not valid")
)

// Message is a contact form submission. AccountID is empty for anonymous
// visitors.
type Message struct {
	ID        string
	AccountID string
	Name      string
	Email     string
	Subject   string
	Body      string
	Seen      bool
	CreatedAt time.Time
}

// Validate normalizes whitespace and checks required fields.
func (m *Message) Validate() error {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Subject = strings.TrimSpace(m.Subject)
	m.Body = strings.TrimSpace(m.Body)

	if m.Name == "" || m.Email == "" || m.Subject == "" || m.Body == "" {
		return ErrMissingFields
	}
	at := strings.IndexByte(m.Email, '@')
	if at <= 0 || at == len(m.Email)-1 {
		return ErrInvalidEmail
	}
	return nil
}

// Repository defines persistence for contact messages.
type Repository interface {
	Create(ctx context.Context, m *Message) error
	ListUnseen(ctx context.Context) ([]Message, error)
	MarkSeen(ctx context.Context, id string) (bool, error)
}
