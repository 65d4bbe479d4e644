package game

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultStateTTL = 24 * time.Hour

// ScoreKeeper holds per-game answer logs and score accumulators in
// Redis. RecordAnswer is the only mutation path, so a player's score
// accumulator always equals the sum of points over their recorded
// answers.
type ScoreKeeper struct {
	redis  *redis.Client
	logger zerolog.Logger
	ttl    time.Duration
}

// NewScoreKeeper creates a score keeper. A non-positive ttl falls back
// to the default of one day (events are short-lived).
func NewScoreKeeper(client *redis.Client, logger zerolog.Logger, ttl time.Duration) *ScoreKeeper {
	if ttl <= 0 {
		ttl = defaultStateTTL
	}
	return &ScoreKeeper{
		redis:  client,
		logger: logger.With().Str("component", "scorekeeper").Logger(),
		ttl:    ttl,
	}
}

func answersKey(gameID, playerID uuid.UUID) string {
	return fmt.Sprintf("game:answers:%s:%s", gameID.String(), playerID.String())
}

func scoresKey(gameID uuid.UUID) string {
	return fmt.Sprintf("game:scores:%s", gameID.String())
}

// RecordAnswer appends the answer to the player's log and bumps their
// score accumulator in one transaction. Returns the player's new total.
func (k *ScoreKeeper) RecordAnswer(ctx context.Context, gameID, playerID uuid.UUID, ans PlayerAnswer) (int, error) {
	data, err := json.Marshal(ans)
	if err != nil {
		return 0, fmt.Errorf("marshal answer: %w", err)
	}

	pipe := k.redis.TxPipeline()
	pipe.RPush(ctx, answersKey(gameID, playerID), data)
	incr := pipe.HIncrBy(ctx, scoresKey(gameID), playerID.String(), int64(ans.PointsEarned))
	pipe.Expire(ctx, answersKey(gameID, playerID), k.ttl)
	pipe.Expire(ctx, scoresKey(gameID), k.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("record answer: %w", err)
	}
	return int(incr.Val()), nil
}

// PlayerAnswers returns the player's full answer log in submission order.
func (k *ScoreKeeper) PlayerAnswers(ctx context.Context, gameID, playerID uuid.UUID) ([]PlayerAnswer, error) {
	raw, err := k.redis.LRange(ctx, answersKey(gameID, playerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	answers := make([]PlayerAnswer, 0, len(raw))
	for _, item := range raw {
		var ans PlayerAnswer
		if err := json.Unmarshal([]byte(item), &ans); err != nil {
			k.logger.Warn().Err(err).Str("game_id", gameID.String()).Msg("skip corrupted answer record")
			continue
		}
		answers = append(answers, ans)
	}
	return answers, nil
}

// PlayerScore returns the player's accumulated score, zero when the
// player has no recorded answers.
func (k *ScoreKeeper) PlayerScore(ctx context.Context, gameID, playerID uuid.UUID) (int, error) {
	val, err := k.redis.HGet(ctx, scoresKey(gameID), playerID.String()).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get score: %w", err)
	}
	score, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("parse score: %w", err)
	}
	return score, nil
}

// Scores returns every player's accumulated score for a game.
func (k *ScoreKeeper) Scores(ctx context.Context, gameID uuid.UUID) (map[uuid.UUID]int, error) {
	vals, err := k.redis.HGetAll(ctx, scoresKey(gameID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get scores: %w", err)
	}

	scores := make(map[uuid.UUID]int, len(vals))
	for field, val := range vals {
		playerID, err := uuid.Parse(field)
		if err != nil {
			k.logger.Warn().Str("field", field).Msg("skip malformed player id")
			continue
		}
		score, err := strconv.Atoi(val)
		if err != nil {
			k.logger.Warn().Str("field", field).Msg("skip malformed score")
			continue
		}
		scores[playerID] = score
	}
	return scores, nil
}
