package game

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultQuestionCacheTTL = 5 * time.Minute

// QuestionCache keeps per-level question lists in Redis so the question
// table is not hit on every round render.
type QuestionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewQuestionCache(client *redis.Client, ttl time.Duration) *QuestionCache {
	if ttl <= 0 {
		ttl = defaultQuestionCacheTTL
	}
	return &QuestionCache{client: client, ttl: ttl}
}

func (c *QuestionCache) key(level Level) string {
	return fmt.Sprintf("questions:level:%d", level)
}

// Get returns the cached question list for a level, or nil on a miss.
func (c *QuestionCache) Get(ctx context.Context, level Level) ([]Question, error) {
	data, err := c.client.Get(ctx, c.key(level)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// Set stores a level's question list with the configured TTL.
func (c *QuestionCache) Set(ctx context.Context, level Level, questions []Question) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(level), data, c.ttl).Err()
}
