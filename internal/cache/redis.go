package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Redis is a Cache backed by a Redis instance, for deployments running more
// than one API server against the same providers.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedis(addr string, logger *zap.Logger) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		logger: logger.Named("cache"),
	}
}

// Ping verifies connectivity at startup.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			// broken cache is a miss, not an error
			r.logger.Warn("redis get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return b, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logger.Warn("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *Redis) Close() error {
	return r.client.Close()
}
