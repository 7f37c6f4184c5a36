package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Limiter counts requests per key in fixed windows
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type window struct {
	count int
	reset time.Time
}

// MemoryLimiter keeps fixed-window counters in process memory
type MemoryLimiter struct {
	mu        sync.Mutex
	max       int
	period    time.Duration
	windows   map[string]*window
	nextSweep time.Time
	now       func() time.Time
}

// NewMemoryLimiter allows max requests per key per period
func NewMemoryLimiter(max int, period time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		max:     max,
		period:  period,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, ok := l.windows[key]
	if !ok || !now.Before(w.reset) {
		w = &window{reset: now.Add(l.period)}
		l.windows[key] = w
	}
	w.count++
	return w.count <= l.max, nil
}

// sweep drops expired windows at most once per period
func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for key, w := range l.windows {
		if !now.Before(w.reset) {
			delete(l.windows, key)
		}
	}
	l.nextSweep = now.Add(l.period)
}

// RedisLimiter keeps fixed-window counters in Redis so several instances share them
type RedisLimiter struct {
	client *redis.Client
	max    int
	period time.Duration
}

func NewRedisLimiter(client *redis.Client, max int, period time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, max: max, period: period}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := "ratelimit:" + key

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit counter: %w", err)
	}
	// First hit opens the window
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.period).Err(); err != nil {
			return false, fmt.Errorf("rate limit expiry: %w", err)
		}
	}
	return count <= int64(l.max), nil
}

// RateLimit rejects clients over their allowance with 429. Counter errors let the request through.
func RateLimit(limiter Limiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			allowed, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				logger.Warn("rate limiter unavailable", zap.String("client_ip", ip), zap.Error(err))
				allowed = true
			}
			if !allowed {
				writeError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
