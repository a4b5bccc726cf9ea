package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stock-screener/src/interfaces"
	"stock-screener/src/logger"
	"stock-screener/src/models"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "screener:list:"
	scanBatch = 500
)

// RedisCache keeps screen results in Redis as JSON with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewRedisCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, Logger: log}
}

// -----------------------------------------------------------------------------

// New builds the cache described by cfg: Redis when enabled, otherwise a no-op.
// The Redis connection is checked once; an unreachable server is an error.
func New(ctx context.Context, cfg models.MCacheConfig, log *logger.Logger) (interfaces.IResultCache, error) {
	if !cfg.Enabled {
		log.Info("Result cache disabled")
		return Noop{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}

	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	log.Info("Result cache on redis %s (ttl %v)", cfg.RedisAddr, ttl)
	return NewRedisCache(client, ttl, log), nil
}

// -----------------------------------------------------------------------------

func (c *RedisCache) Get(ctx context.Context, key string) ([]models.MScreenResult, bool) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.Logger.Warning("cache get %s: %v", key, err)
		}
		return nil, false
	}

	var results []models.MScreenResult
	if err := json.Unmarshal(data, &results); err != nil {
		c.Logger.Warning("cache entry %s is corrupt: %v", key, err)
		return nil, false
	}
	return results, true
}

// -----------------------------------------------------------------------------

func (c *RedisCache) Set(ctx context.Context, key string, results []models.MScreenResult) {
	data, err := json.Marshal(results)
	if err != nil {
		c.Logger.Warning("cache encode %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		c.Logger.Warning("cache set %s: %v", key, err)
	}
}

// -----------------------------------------------------------------------------

// Invalidate deletes every key under the screen prefix. Entries written while
// the scan runs may survive until their TTL.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	var keys []string
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan %s*: %w", keyPrefix, err)
	}

	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		if err := c.client.Del(ctx, keys[start:end]...).Err(); err != nil {
			return fmt.Errorf("delete cached screens: %w", err)
		}
	}
	c.Logger.Info("Invalidated %d cached screens", len(keys))
	return nil
}

// -----------------------------------------------------------------------------

func (c *RedisCache) Close() error {
	return c.client.Close()
}
