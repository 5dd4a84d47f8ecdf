// Package ratelimit implements a fixed-window request limiter backed by Redis.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces limiter counters in Redis.
const KeyPrefix = "ratelimit:"

// fixedWindow increments the counter for the current window, starts the
// window on the first hit and reports the count with the remaining TTL.
var fixedWindow = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
return {count, ttl}
`)

// Result describes the limiter decision for a single request.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter allows at most Limit requests per key within each Period window.
type Limiter struct {
	client redis.Scripter
	limit  int
	period time.Duration
	logger *slog.Logger
}

// NewLimiter creates a limiter. limit and period must be positive.
func NewLimiter(client redis.Scripter, limit int, period time.Duration, logger *slog.Logger) (*Limiter, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	if period <= 0 {
		return nil, fmt.Errorf("period must be positive, got %s", period)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{
		client: client,
		limit:  limit,
		period: period,
		logger: logger.With(slog.String("component", "rate_limiter")),
	}, nil
}

// Period returns the window length.
func (l *Limiter) Period() time.Duration {
	return l.period
}

// Allow records a hit for key and reports whether it is within the limit.
// When Redis cannot be reached the request is allowed and the error is
// returned alongside the permissive result.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	vals, err := fixedWindow.Run(ctx, l.client, []string{KeyPrefix + key}, l.period.Milliseconds()).Int64Slice()
	if err != nil {
		l.logger.WarnContext(ctx, "rate limiter unavailable, allowing request",
			slog.String("error", err.Error()))
		return Result{Allowed: true, Remaining: l.limit}, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(vals) != 2 {
		return Result{Allowed: true, Remaining: l.limit}, fmt.Errorf("unexpected rate limit reply: %v", vals)
	}

	count, ttl := int(vals[0]), time.Duration(vals[1])*time.Millisecond
	if ttl <= 0 {
		ttl = l.period
	}

	if count > l.limit {
		return Result{Allowed: false, Remaining: 0, RetryAfter: ttl}, nil
	}
	return Result{Allowed: true, Remaining: l.limit - count}, nil
}
