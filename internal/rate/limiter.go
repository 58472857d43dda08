package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds rate limiter tuning parameters.
type Config struct {
	MaxRequests int
	Window      time.Duration
	KeyPrefix   string
}

// Limiter enforces a per-key request budget using Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) (*Limiter, error) {
	if redisClient == nil {
		return nil, fmt.Errorf("%w: redis client required", ErrInvalidConfig)
	}
	if cfg.MaxRequests <= 0 {
		return nil, fmt.Errorf("%w: MaxRequests must be > 0", ErrInvalidConfig)
	}
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("%w: Window must be > 0", ErrInvalidConfig)
	}
	cfg.KeyPrefix = strings.TrimSuffix(strings.TrimSpace(cfg.KeyPrefix), ":")
	if cfg.KeyPrefix == "" {
		return nil, fmt.Errorf("%w: KeyPrefix must not be empty", ErrInvalidConfig)
	}

	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}, nil
}

// Allow records one request for key and reports whether it fits the budget.
// The returned count is the number of requests seen in the current window.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, int64, error) {
	count, err := l.incrementWithTTL(ctx, l.key(key), l.config.Window)
	if err != nil {
		return false, 0, err
	}
	return count <= int64(l.config.MaxRequests), count, nil
}

// Window returns the configured window length.
func (l *Limiter) Window() time.Duration {
	return l.config.Window
}

func (l *Limiter) key(k string) string {
	return l.config.KeyPrefix + ":" + k
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}
