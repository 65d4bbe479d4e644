// Package vote runs the costume contest: one vote per guest, tallies
// kept in a Redis sorted set, periodically snapshotted to Postgres.
package vote

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrAlreadyVoted is returned when a guest tries to vote twice.
var ErrAlreadyVoted = errors.New("voter has already cast a vote")

// Entry is one row of the costume tally, highest votes first.
type Entry struct {
	CostumeID string `json:"costume_id"`
	Votes     int    `json:"votes"`
}

// ServiceOptions configures tally behavior.
type ServiceOptions struct {
	RedisKeyPrefix string // default "costume"
	TopN           int    // default 10
}

// Service manages the costume vote tally in Redis.
type Service struct {
	redis  *redis.Client
	logger zerolog.Logger
	prefix string
	topN   int
}

// NewService constructs a vote service instance.
func NewService(client *redis.Client, logger zerolog.Logger, opts ServiceOptions) *Service {
	prefix := opts.RedisKeyPrefix
	if prefix == "" {
		prefix = "costume"
	}
	topN := opts.TopN
	if topN <= 0 {
		topN = 10
	}
	return &Service{
		redis:  client,
		logger: logger.With().Str("component", "vote").Logger(),
		prefix: prefix,
		topN:   topN,
	}
}

func (s *Service) tallyKey() string {
	return s.prefix + ":tally"
}

func (s *Service) voterKey(voterID uuid.UUID) string {
	return s.prefix + ":voted:" + voterID.String()
}

// CastVote records one vote for a costume. The voter marker is claimed
// first with SETNX so a guest can never count twice.
func (s *Service) CastVote(ctx context.Context, voterID uuid.UUID, costumeID string) error {
	if costumeID == "" {
		return errors.New("costume id is required")
	}

	claimed, err := s.redis.SetNX(ctx, s.voterKey(voterID), costumeID, 0).Result()
	if err != nil {
		return fmt.Errorf("claim voter marker: %w", err)
	}
	if !claimed {
		return ErrAlreadyVoted
	}

	if err := s.redis.ZIncrBy(ctx, s.tallyKey(), 1, costumeID).Err(); err != nil {
		// Release the marker so the guest can retry.
		if delErr := s.redis.Del(ctx, s.voterKey(voterID)).Err(); delErr != nil {
			s.logger.Warn().Err(delErr).Str("voter_id", voterID.String()).Msg("failed to release voter marker")
		}
		return fmt.Errorf("increment tally: %w", err)
	}

	s.logger.Info().
		Str("voter_id", voterID.String()).
		Str("costume_id", costumeID).
		Msg("vote recorded")
	return nil
}

// VotedFor returns the costume a guest voted for, empty when they have
// not voted yet.
func (s *Service) VotedFor(ctx context.Context, voterID uuid.UUID) (string, error) {
	val, err := s.redis.Get(ctx, s.voterKey(voterID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get voter marker: %w", err)
	}
	return val, nil
}

// Tally returns the top costumes by vote count. A non-positive limit
// falls back to the configured top N.
func (s *Service) Tally(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = s.topN
	}

	members, err := s.redis.ZRevRangeWithScores(ctx, s.tallyKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read tally: %w", err)
	}

	entries := make([]Entry, 0, len(members))
	for _, m := range members {
		costumeID, ok := m.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			CostumeID: costumeID,
			Votes:     int(m.Score),
		})
	}
	return entries, nil
}
