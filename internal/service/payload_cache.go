package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/quizora/testroom-backend/internal/config"
	"github.com/quizora/testroom-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

// RedisPayloadCache stores student-facing variant payloads in Redis so the
// question fetch on the hot path skips PostgreSQL. ErrCacheMiss signals a
// read-through to the store.
type RedisPayloadCache struct {
	rdb *redis.Client
}

// ErrCacheMiss indicates the payload is not cached.
var ErrCacheMiss = errors.New("payload not cached")

// NewRedisPayloadCache creates a RedisPayloadCache.
func NewRedisPayloadCache(rdb *redis.Client) *RedisPayloadCache {
	return &RedisPayloadCache{rdb: rdb}
}

// GetVariantPayload retrieves a cached payload.
func (c *RedisPayloadCache) GetVariantPayload(ctx context.Context, variantID uuid.UUID) (*model.VariantPayload, error) {
	data, err := c.rdb.Get(ctx, config.CacheKey.VariantPayloadKey(variantID.String())).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("get payload: %w", err)
	}

	var payload model.VariantPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return &payload, nil
}

// SetVariantPayload caches a payload without expiry. Room closure does not
// invalidate it: the payload carries no answers and the test tree is
// immutable after creation.
func (c *RedisPayloadCache) SetVariantPayload(ctx context.Context, payload *model.VariantPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.rdb.Set(ctx, config.CacheKey.VariantPayloadKey(payload.VariantID.String()), data, 0).Err()
}
