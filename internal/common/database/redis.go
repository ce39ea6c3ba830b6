// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"argus-settings/internal/settings"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the client for the channel layer Redis.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis creates a client for a redis channel layer.
func NewRedis(cfg settings.ChannelLayerSettings) (*RedisClient, error) {
	if cfg.Backend != settings.ChannelLayerRedis {
		return nil, fmt.Errorf("channel layer backend %q is not redis", cfg.Backend)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address(),
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     2,
		MaxRetries:   -1,
	})

	return &RedisClient{Client: rdb}, nil
}

// Ping tests the Redis connection
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}
