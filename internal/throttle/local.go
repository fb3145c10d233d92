package throttle

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mcoot/agame/internal/dependencies/clock"
)

// LocalLimiter keeps one token bucket per scope and key in process memory
type LocalLimiter struct {
	rates Rates
	clock clock.Clock
	ttl   time.Duration

	mu        sync.Mutex
	limiters  map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	lim     *rate.Limiter
	lastHit time.Time
}

// Ensure LocalLimiter implements Limiter
var _ Limiter = (*LocalLimiter)(nil)

// NewLocalLimiter creates an in-process limiter. Buckets idle longer than
// ttl are evicted by a sweep that runs at most once per ttl.
func NewLocalLimiter(rates Rates, clk clock.Clock, ttl time.Duration) *LocalLimiter {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &LocalLimiter{
		rates:     rates,
		clock:     clk,
		ttl:       ttl,
		limiters:  make(map[string]*bucket),
		lastSweep: clk.Now(),
	}
}

func (l *LocalLimiter) Allow(ctx context.Context, scope, key string) (Decision, error) {
	r, ok := l.rates[scope]
	if !ok {
		return Decision{Allowed: true}, nil
	}

	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.ttl {
		l.sweep(now)
	}

	id := scope + "|" + key
	b, ok := l.limiters[id]
	if !ok {
		b = &bucket{
			lim: rate.NewLimiter(rate.Every(r.Period/time.Duration(r.Requests)), r.Requests),
		}
		l.limiters[id] = b
	}
	b.lastHit = now

	if b.lim.AllowN(now, 1) {
		return Decision{Allowed: true}, nil
	}

	res := b.lim.ReserveN(now, 1)
	wait := res.DelayFrom(now)
	res.CancelAt(now)
	return Decision{Allowed: false, RetryAfter: wait}, nil
}

func (l *LocalLimiter) sweep(now time.Time) {
	for k, b := range l.limiters {
		if now.Sub(b.lastHit) > l.ttl {
			delete(l.limiters, k)
		}
	}
	l.lastSweep = now
}

// Len returns the number of live buckets
func (l *LocalLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
