package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// windowCounter increments a key whose lifetime is one window.
type windowCounter interface {
	IncrWithExpire(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisRateLimiter applies a fixed window limit shared by every instance.
type RedisRateLimiter struct {
	counter windowCounter
	limit   int64
	window  time.Duration
}

// NewRedisRateLimiter allows requests plus burst events per window for each key.
func NewRedisRateLimiter(client *redis.Client, requests, burst int, window time.Duration) *RedisRateLimiter {
	return newRedisRateLimiter(redisCounter{client: client}, requests, burst, window)
}

func newRedisRateLimiter(counter windowCounter, requests, burst int, window time.Duration) *RedisRateLimiter {
	if requests <= 0 {
		requests = 1
	}
	if burst < 0 {
		burst = 0
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisRateLimiter{counter: counter, limit: int64(requests + burst), window: window}
}

// Allow counts one event for key in the current window.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.counter.IncrWithExpire(ctx, "ratelimit:"+key, l.window)
	if err != nil {
		return false, fmt.Errorf("redis rate limit: %w", err)
	}
	return count <= l.limit, nil
}

type redisCounter struct {
	client *redis.Client
}

func (c redisCounter) IncrWithExpire(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// NewRedisClient parses url and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
