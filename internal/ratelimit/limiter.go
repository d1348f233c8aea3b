// Package ratelimit implements a Redis-backed sliding window limiter.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result of a single Allow call.
type Result struct {
	Allowed   bool
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// Limiter counts requests per key in a sorted set of timestamps.
type Limiter struct {
	client    redis.Scripter
	keyPrefix string
	limit     int
	window    time.Duration
}

func NewLimiter(client redis.Scripter, keyPrefix string, limit int, window time.Duration) *Limiter {
	return &Limiter{client: client, keyPrefix: keyPrefix, limit: limit, window: window}
}

// Trim, count and add run as one script so concurrent callers cannot
// both take the last slot.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
	local current = redis.call('ZCARD', key)

	if current < limit then
		local counter = redis.call('INCR', key .. ':seq')
		redis.call('ZADD', key, now, now .. ':' .. counter)
		local ttl = math.ceil(window_ms / 1000)
		redis.call('EXPIRE', key, ttl)
		redis.call('EXPIRE', key .. ':seq', ttl)
		return {1, limit - current - 1, 0}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local reset_at = 0
	if oldest and #oldest >= 2 then
		reset_at = tonumber(oldest[2]) + window_ms
	end
	return {0, 0, reset_at}
`)

// Allow records one request for key if it fits in the window.
func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	now := time.Now()
	nowMs := now.UnixMilli()
	windowMs := l.window.Milliseconds()

	res, err := slidingWindow.Run(ctx, l.client, []string{l.keyPrefix + key},
		nowMs, nowMs-windowMs, l.limit, windowMs).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("rate limit script: unexpected reply length %d", len(res))
	}

	resetAt := now.Add(l.window)
	if res[2] > 0 {
		resetAt = time.UnixMilli(res[2])
	}
	return &Result{
		Allowed:   res[0] == 1,
		Remaining: int(res[1]),
		Limit:     l.limit,
		ResetAt:   resetAt,
	}, nil
}
