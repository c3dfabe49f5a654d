package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vintrade/parts-market/internal/domain/account"
)

const findBySessionHashSQL = `SELECT a.id, a.username, a.account_type, a.is_verified, a.created_at
	FROM sessions s
	JOIN accounts a ON a.id = s.account_id
	WHERE s.token_hash = $1 AND s.expires_at > now()`

var _ account.Repository = (*AccountRepository)(nil)

// AccountRepository implements account.Repository backed by PostgreSQL.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns an AccountRepository that uses the given pool.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// FindBySessionHash resolves an HMAC-SHA256 session token hash to its account.
func (r *AccountRepository) FindBySessionHash(ctx context.Context, hash string) (*account.Account, error) {
	var a account.Account
	err := r.pool.QueryRow(ctx, findBySessionHashSQL, hash).Scan(
		&a.ID, &a.Username, &a.Type, &a.IsVerified, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrSessionNotFound
		}
		return nil, fmt.Errorf("finding session: %w", err)
	}
	return &a, nil
}
