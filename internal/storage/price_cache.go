package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"boq_engine/internal/config"
	"boq_engine/internal/models"
)

// PriceCache is a Redis-backed cache of resolved pricing components, shared
// across engine instances. A catalog refresh flushes it wholesale so stale
// prices never outlive the entries they came from.
type PriceCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewPriceCache connects to Redis and verifies the connection.
func NewPriceCache(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (*PriceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &PriceCache{client: client, ttl: cfg.PriceTTL, log: log}, nil
}

// Get returns the cached components for a key. Cache errors are logged and
// reported as misses; the resolver falls through to the catalog.
func (c *PriceCache) Get(ctx context.Context, key string) (*models.PricingComponents, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("price cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var components models.PricingComponents
	if err := json.Unmarshal(data, &components); err != nil {
		c.log.Warn("price cache entry corrupt, dropping", zap.String("key", key), zap.Error(err))
		c.client.Del(ctx, key)
		return nil, false
	}
	return &components, true
}

// Set stores the components for a key. Failures are logged, not returned;
// caching is best effort.
func (c *PriceCache) Set(ctx context.Context, key string, components *models.PricingComponents) {
	data, err := json.Marshal(components)
	if err != nil {
		c.log.Warn("price cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("price cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateAll removes every cached price. Called after a catalog refresh.
func (c *PriceCache) InvalidateAll(ctx context.Context) error {
	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, "price:*", 500).Result()
		if err != nil {
			return fmt.Errorf("failed to scan price cache: %w", err)
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return fmt.Errorf("failed to delete price cache keys: %w", err)
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	c.log.Info("price cache invalidated", zap.Int64("keys_deleted", deleted))
	return nil
}

// Close releases the Redis connection.
func (c *PriceCache) Close() error {
	return c.client.Close()
}
