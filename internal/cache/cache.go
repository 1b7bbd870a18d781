package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyAvailability     = "availability:store:%s"
	patternProximity    = "proximity:*"
	invalidationTimeout = 2 * time.Second
)

// AvailabilityKey returns the cache key for a store's product listing.
func AvailabilityKey(storeID snowflake.ID) string {
	return fmt.Sprintf(keyAvailability, storeID.String())
}

// Client is a best-effort read cache. A redis outage degrades every
// operation to a miss; it never surfaces errors to the caller.
type Client interface {
	GetJSON(ctx context.Context, key string, dest any) bool
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration)
	// InvalidateStore drops the store's availability listing and every
	// cached proximity page that might include it.
	InvalidateStore(ctx context.Context, storeID snowflake.ID)
}

type redisCache struct {
	client *redis.Client
	log    *zap.Logger
}

func NewClient(client *redis.Client, log *zap.Logger) Client {
	return &redisCache{
		client: client,
		log:    log.Named("cache"),
	}
}

func (c *redisCache) GetJSON(ctx context.Context, key string, dest any) bool {
	if c.client == nil || key == "" {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.Warn("cache entry undecodable", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *redisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if c.client == nil || key == "" || ttl <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *redisCache) InvalidateStore(ctx context.Context, storeID snowflake.ID) {
	if c.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, invalidationTimeout)
	defer cancel()

	if err := c.client.Del(ctx, AvailabilityKey(storeID)).Err(); err != nil {
		c.log.Warn("availability invalidation failed",
			zap.String("store_id", storeID.String()),
			zap.Error(err),
		)
	}
	c.deletePattern(ctx, patternProximity)
}

func (c *redisCache) deletePattern(ctx context.Context, pattern string) {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	keys := make([]string, 0, 16)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("cache scan failed", zap.String("pattern", pattern), zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("pattern invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}
