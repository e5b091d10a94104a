package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// WindowLimiter is a fixed-window request counter backed by Redis, used when
// rate-limit state should survive restarts.
// Key format: ratelimit:<name>:<client>:<window_start_unix>
type WindowLimiter struct {
	client *redis.Client
	name   string
	limit  int64
	window time.Duration
}

// NewWindowLimiter creates a limiter allowing limit requests per window,
// counted separately per client key. name namespaces the Redis keys so
// independent limits never share counters.
func NewWindowLimiter(client *redis.Client, name string, limit int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{
		client: client,
		name:   name,
		limit:  int64(limit),
		window: window,
	}
}

// Allow increments the counter for clientKey's current window and reports
// whether the request is within the limit.
func (l *WindowLimiter) Allow(ctx context.Context, clientKey string) (bool, error) {
	key := l.key(clientKey, time.Now())

	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		// First hit in this window owns setting the expiry.
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return n <= l.limit, nil
}

func (l *WindowLimiter) key(clientKey string, now time.Time) string {
	windowStart := now.Unix() - now.Unix()%int64(l.window.Seconds())
	return fmt.Sprintf("ratelimit:%s:%s:%d", l.name, clientKey, windowStart)
}
