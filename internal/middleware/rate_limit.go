package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"rentride/internal/utils"
	"rentride/pkg/logger"
)

// Limiter decides whether one more request for key fits the budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type windowCounter interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisLimiter is a fixed-window counter shared by every instance that
// points at the same Redis.
type RedisLimiter struct {
	counter windowCounter
	limit   int64
	window  time.Duration
}

func NewRedisLimiter(counter windowCounter, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{counter: counter, limit: int64(limit), window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.counter.IncrementWindow(ctx, utils.CacheRateLimitPrefix+key, l.window)
	if err != nil {
		return false, err
	}
	return count <= l.limit, nil
}

// LocalLimiter keeps one token bucket per key in process memory.
type LocalLimiter struct {
	limiters sync.Map
	limit    rate.Limit
	burst    int
}

// NewLocalLimiter allows perWindow requests per window with bursts of the
// same size.
func NewLocalLimiter(perWindow int, window time.Duration) *LocalLimiter {
	if perWindow <= 0 {
		perWindow = 1
	}
	return &LocalLimiter{
		limit: rate.Every(window / time.Duration(perWindow)),
		burst: perWindow,
	}
}

func (l *LocalLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return l.getLimiter(key).Allow(), nil
}

func (l *LocalLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}

	lim := rate.NewLimiter(l.limit, l.burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		if actualLim, ok := actual.(*rate.Limiter); ok {
			return actualLim
		}
	}
	return lim
}

// RateLimit rejects requests over budget with 429, keyed by scope and
// client IP. Limiter errors let the request through.
func RateLimit(limiter Limiter, scope string, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := scope + ":" + c.ClientIP()

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.WithError(err).WithField("scope", scope).Warn("Rate limiter unavailable")
			c.Next()
			return
		}
		if !allowed {
			log.LogSecurityEvent("rate_limited", "low", map[string]interface{}{
				"scope":      scope,
				"ip_address": c.ClientIP(),
				"path":       c.Request.URL.Path,
			})
			utils.TooManyRequestsResponse(c)
			c.Abort()
			return
		}

		c.Next()
	}
}
