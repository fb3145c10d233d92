package throttle

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/agame/internal/dependencies/clock"
)

const redisKeyPrefix = "agame:throttle:"

// RedisLimiter is a fixed-window counter shared by every server process
type RedisLimiter struct {
	client *redis.Client
	rates  Rates
	clock  clock.Clock
}

// Ensure RedisLimiter implements Limiter
var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter creates a limiter backed by Redis counters
func NewRedisLimiter(client *redis.Client, rates Rates, clk clock.Clock) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		rates:  rates,
		clock:  clk,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, scope, key string) (Decision, error) {
	r, ok := l.rates[scope]
	if !ok {
		return Decision{Allowed: true}, nil
	}

	now := l.clock.Now()
	window := now.Truncate(r.Period)
	counterKey := fmt.Sprintf("%s%s:%s:%d", redisKeyPrefix, scope, key, window.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, counterKey)
	pipe.Expire(ctx, counterKey, r.Period)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("redis error: %w", err)
	}

	if incr.Val() <= int64(r.Requests) {
		return Decision{Allowed: true}, nil
	}
	return Decision{Allowed: false, RetryAfter: window.Add(r.Period).Sub(now)}, nil
}
