// Package throttle limits request rates per scope and caller key.
package throttle

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Scopes used by the HTTP surface
const (
	ScopeUserMe = "user_me"
	ScopePoints = "points"
)

// Rate is a number of requests allowed per period
type Rate struct {
	Requests int
	Period   time.Duration
}

// ParseRate parses rates of the form "30/min". The period may be s, sec,
// m, min, h, hour, d or day; only its first letter is significant.
func ParseRate(s string) (Rate, error) {
	num, period, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Rate{}, fmt.Errorf("invalid rate %q: want <requests>/<period>", s)
	}

	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil || n <= 0 {
		return Rate{}, fmt.Errorf("invalid rate %q: request count must be a positive integer", s)
	}

	period = strings.ToLower(strings.TrimSpace(period))
	if period == "" {
		return Rate{}, fmt.Errorf("invalid rate %q: missing period", s)
	}

	var d time.Duration
	switch period[0] {
	case 's':
		d = time.Second
	case 'm':
		d = time.Minute
	case 'h':
		d = time.Hour
	case 'd':
		d = 24 * time.Hour
	default:
		return Rate{}, fmt.Errorf("invalid rate %q: unknown period %q", s, period)
	}

	return Rate{Requests: n, Period: d}, nil
}

func (r Rate) String() string {
	return fmt.Sprintf("%d/%s", r.Requests, r.Period)
}

// Decision is the outcome of a throttle check
type Decision struct {
	Allowed bool
	// RetryAfter is how long the caller should wait when not allowed
	RetryAfter time.Duration
}

// Limiter decides whether a caller may proceed in a scope.
// Scopes without a configured rate are always allowed.
type Limiter interface {
	Allow(ctx context.Context, scope, key string) (Decision, error)
}

// Rates maps scope names to their configured rate
type Rates map[string]Rate

// DefaultRates returns the default per-scope rates
func DefaultRates() Rates {
	return Rates{
		ScopeUserMe: {Requests: 30, Period: time.Minute},
		ScopePoints: {Requests: 60, Period: time.Minute},
	}
}
