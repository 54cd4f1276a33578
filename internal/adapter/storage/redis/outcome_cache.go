package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"payment-event-pipeline/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// OutcomeCache implements ports.OutcomeCache using Redis.
// Only terminal results are stored; Postgres remains the source of truth.
type OutcomeCache struct {
	client *goredis.Client
	prefix string
}

// NewOutcomeCache creates a new Redis-backed outcome cache.
func NewOutcomeCache(client *goredis.Client) *OutcomeCache {
	return &OutcomeCache{
		client: client,
		prefix: "webhook-outcome:",
	}
}

// Get retrieves the cached result for a provider event id.
// Returns nil, nil if the key does not exist.
func (c *OutcomeCache) Get(ctx context.Context, providerEventID string) (*domain.PipelineResult, error) {
	val, err := c.client.Get(ctx, c.prefix+providerEventID).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis outcome get: %w", err)
	}

	var result domain.PipelineResult
	if err := json.Unmarshal(val, &result); err != nil {
		return nil, fmt.Errorf("redis outcome decode: %w", err)
	}
	return &result, nil
}

// Set stores a terminal result with TTL. Non-terminal results are refused.
func (c *OutcomeCache) Set(ctx context.Context, result *domain.PipelineResult, ttl time.Duration) error {
	if result == nil || !result.State.IsTerminal() {
		return fmt.Errorf("redis outcome set: refusing non-terminal result")
	}

	val, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("redis outcome encode: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+result.ProviderEventID, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis outcome set: %w", err)
	}
	return nil
}

// Delete drops a cached result, e.g. before an operator-forced reprocess.
func (c *OutcomeCache) Delete(ctx context.Context, providerEventID string) error {
	if err := c.client.Del(ctx, c.prefix+providerEventID).Err(); err != nil {
		return fmt.Errorf("redis outcome delete: %w", err)
	}
	return nil
}
