package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/insightlabs/naomi/internal/adapters/config"
	"github.com/insightlabs/naomi/pkg/logger"
)

const (
	keyPrefix = "naomi:resolve:"
	entryTTL  = 6 * time.Hour
)

// Cache stores coin-resolution results (query -> canonical id) so repeated
// lookups skip the search provider. Misses and redis failures both read as
// "not cached"; the cache is never load-bearing.
type Cache struct {
	client *redis.Client
}

// NewCache connects to redis and verifies the connection.
func NewCache(ctx context.Context, cfg *config.RedisConfig) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("redis resolution cache connected", zap.String("addr", cfg.Addr))

	return &Cache{client: client}, nil
}

// Get returns the cached canonical id for query, or "" on miss.
func (c *Cache) Get(ctx context.Context, query string) (string, bool) {
	val, err := c.client.Get(ctx, keyPrefix+query).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("redis get failed", zap.Error(err))
		}
		return "", false
	}
	return val, true
}

// Set stores a resolution result.
func (c *Cache) Set(ctx context.Context, query, canonicalID string) {
	if err := c.client.Set(ctx, keyPrefix+query, canonicalID, entryTTL).Err(); err != nil {
		logger.Warn("redis set failed", zap.Error(err))
	}
}

// Close releases the underlying connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
