// Package account holds the account model shared across the marketplace.
package account

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Type is the closed set of account roles. The role decides what an account
// may do: only buyers place orders, only admins moderate contact messages.
type Type string

const (
	TypeBuyer  Type = "buyer"
	TypeSeller Type = "seller"
	TypeAdmin  Type = "admin"
)

// Valid reports whether t is one of the known roles.
func (t Type) Valid() bool {
	switch t {
	case TypeBuyer, TypeSeller, TypeAdmin:
		return true
	}
	return false
}

// Account is an authenticated marketplace identity.
type Account struct {
	ID         string
	Username   string
	Type       Type
	IsVerified bool
	CreatedAt  time.Time
}

// ErrSessionNotFound indicates the session token is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// Repository resolves session tokens to accounts.
type Repository interface {
	// FindBySessionHash returns the account owning the session with the
	// given token hash, or ErrSessionNotFound for unknown or expired tokens.
	FindBySessionHash(ctx context.Context, hash string) (*Account, error)
}
