package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vintrade/parts-market/internal/domain/contact"
)

const (
	createMessageSQL = `INSERT INTO contact_messages (id, account_id, name, email, subject, message_body)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)`

	listUnseenMessagesSQL = `SELECT id, COALESCE(account_id::text, ''), name, email, subject, message_body, message_seen, created_at
		FROM contact_messages WHERE NOT message_seen ORDER BY created_at DESC`

	markMessageSeenSQL = `UPDATE contact_messages SET message_seen = TRUE WHERE id = $1 AND NOT message_seen`
)

var _ contact.Repository = (*ContactRepository)(nil)

// ContactRepository implements contact.Repository backed by PostgreSQL.
type ContactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository returns a ContactRepository that uses the given pool.
func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

// Create persists a new contact message.
func (r *ContactRepository) Create(ctx context.Context, m *contact.Message) error {
	_, err := r.pool.Exec(ctx, createMessageSQL,
		m.ID, m.AccountID, m.Name, m.Email, m.Subject, m.Body,
	)
	if err != nil {
		return fmt.Errorf("creating contact message %q: %w", m.ID, err)
	}
	return nil
}

// ListUnseen returns all messages not yet reviewed by an admin, newest first.
func (r *ContactRepository) ListUnseen(ctx context.Context) ([]contact.Message, error) {
	rows, err := r.pool.Query(ctx, listUnseenMessagesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing contact messages: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (contact.Message, error) {
		var m contact.Message
		err := row.Scan(&m.ID, &m.AccountID, &m.Name, &m.Email, &m.Subject, &m.Body, &m.Seen, &m.CreatedAt)
		return m, err
	})
}

// MarkSeen flags a message as reviewed. It returns false when the message
// does not exist or was already seen.
func (r *ContactRepository) MarkSeen(ctx context.Context, id string) (bool, error) {
	ct, err := r.pool.Exec(ctx, markMessageSeenSQL, id)
	if err != nil {
		return false, fmt.Errorf("marking contact message %q seen: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}
