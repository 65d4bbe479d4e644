package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/martyfest/party-platform/internal/guestbook"
)

// GuestbookRepository persists birthday messages in Postgres.
type GuestbookRepository struct {
	pool *pgxpool.Pool
}

var _ guestbook.Store = (*GuestbookRepository)(nil)

func NewGuestbookRepository(pool *pgxpool.Pool) *GuestbookRepository {
	return &GuestbookRepository{pool: pool}
}

// Insert stores a message and returns its generated id.
func (r *GuestbookRepository) Insert(ctx context.Context, msg guestbook.Message) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`INSERT INTO guestbook_messages (author_name, body, created_at)
		VALUES ($1, $2, $3)
		RETURNING message_id`,
		msg.AuthorName, msg.Body, msg.CreatedAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert guestbook message: %w", err)
	}
	return id, nil
}

// ListRecent returns up to limit messages, newest first.
func (r *GuestbookRepository) ListRecent(ctx context.Context, limit int) ([]guestbook.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT message_id, author_name, body, created_at
		FROM guestbook_messages
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query guestbook messages: %w", err)
	}
	defer rows.Close()

	var messages []guestbook.Message
	for rows.Next() {
		var msg guestbook.Message
		if err := rows.Scan(&msg.ID, &msg.AuthorName, &msg.Body, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
