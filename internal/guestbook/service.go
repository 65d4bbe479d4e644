// Package guestbook stores birthday messages left by guests.
package guestbook

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxMessageLength = 2000

var (
	ErrEmptyAuthor    = errors.New("author name is required")
	ErrEmptyMessage   = errors.New("message is required")
	ErrMessageTooLong = errors.New("message is too long")
)

// Message is a single guestbook entry.
type Message struct {
	ID         uuid.UUID `json:"id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store is the persistence boundary for guestbook entries.
type Store interface {
	Insert(ctx context.Context, msg Message) (uuid.UUID, error)
	ListRecent(ctx context.Context, limit int) ([]Message, error)
}

// Service validates and records guestbook entries.
type Service struct {
	store  Store
	logger zerolog.Logger
}

func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "guestbook").Logger(),
	}
}

// Add validates and persists a new message, returning its id.
func (s *Service) Add(ctx context.Context, authorName, body string) (uuid.UUID, error) {
	authorName = strings.TrimSpace(authorName)
	body = strings.TrimSpace(body)

	if authorName == "" {
		return uuid.Nil, ErrEmptyAuthor
	}
	if body == "" {
		return uuid.Nil, ErrEmptyMessage
	}
	if len(body) > maxMessageLength {
		return uuid.Nil, ErrMessageTooLong
	}

	id, err := s.store.Insert(ctx, Message{
		AuthorName: authorName,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert message: %w", err)
	}

	s.logger.Info().Str("message_id", id.String()).Msg("guestbook message added")
	return id, nil
}

// List returns the most recent messages, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListRecent(ctx, limit)
}
