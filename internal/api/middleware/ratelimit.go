package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/voyagemap/itinerary-sync/internal/metrics"
)

// Limiter decides whether a request from clientKey may proceed. Implemented
// in-memory below and by the Redis-backed window limiter in
// infrastructure/db/redis.
type Limiter interface {
	Allow(ctx context.Context, clientKey string) (bool, error)
}

// RateLimit enforces a per-client limit, keyed by the client IP. Rejected
// requests get a 429 with a JSON error body. A limiter backend failure fails
// open: availability of the sync API wins over strict accounting.
func RateLimit(limiter Limiter, name string, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, err := limiter.Allow(c.Request().Context(), c.RealIP())
			if err != nil {
				log.Warn().Err(err).Str("limiter", name).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}
			if !allowed {
				metrics.RateLimitRejectionsTotal.WithLabelValues(name).Inc()
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": "Too many requests, please try again later.",
				})
			}
			return next(c)
		}
	}
}

// MemoryLimiter is the in-process fallback: one token bucket per client with
// an average rate of limit/window and a burst of limit. Stale entries are
// evicted periodically so the map does not grow with every IP ever seen.
type MemoryLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientBucket
	rate     rate.Limit
	burst    int
	stopOnce sync.Once
	stop     chan struct{}
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const memoryLimiterTTL = time.Hour

// NewMemoryLimiter creates a limiter allowing limit requests per window for
// each client key and starts its cleanup loop.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	m := &MemoryLimiter{
		clients: make(map[string]*clientBucket),
		rate:    rate.Limit(float64(limit) / window.Seconds()),
		burst:   limit,
		stop:    make(chan struct{}),
	}
	go m.cleanupLoop(window)
	return m
}

// Allow reports whether clientKey has budget left. Never returns an error.
func (m *MemoryLimiter) Allow(_ context.Context, clientKey string) (bool, error) {
	m.mu.Lock()
	entry, ok := m.clients[clientKey]
	if !ok {
		entry = &clientBucket{limiter: rate.NewLimiter(m.rate, m.burst)}
		m.clients[clientKey] = entry
	}
	entry.lastSeen = time.Now()
	limiter := entry.limiter
	m.mu.Unlock()

	return limiter.Allow(), nil
}

// Stop terminates the cleanup loop. Safe to call more than once.
func (m *MemoryLimiter) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *MemoryLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup()
		case <-m.stop:
			return
		}
	}
}

func (m *MemoryLimiter) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	threshold := time.Now().Add(-memoryLimiterTTL)
	for key, entry := range m.clients {
		if entry.lastSeen.Before(threshold) {
			delete(m.clients, key)
		}
	}
}
