package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"tarabaho-web/internal/delivery/http/response"
	"tarabaho-web/pkg/logger"
	"tarabaho-web/pkg/redis"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Time window duration
	Window time.Duration
	// Custom key extractor (default: IP-based)
	KeyFunc func(*gin.Context) string
	// Key prefix for Redis (default: "rl:ip:")
	KeyPrefix string
	// Whether to fail closed (reject) when Redis is unavailable
	FailClosed bool
	// Redis returns the client to count with; nil falls back to memory.
	// Defaults to the shared client.
	Redis func() *goredis.Client
}

func clientIP(c *gin.Context) string { return c.ClientIP() }

// DefaultRateLimitConfig is the per-IP limit for every API route.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:     100,
		Window:    time.Minute,
		KeyPrefix: "rl:ip:",
		KeyFunc:   clientIP,
	}
}

// LoginRateLimitConfig is the strict limit for login, registration and token
// recovery, which all forward credentials to the API.
func LoginRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return RateLimitConfig{
		Limit:      limit,
		Window:     window,
		KeyPrefix:  "rl:login:",
		FailClosed: true,
		KeyFunc:    clientIP,
	}
}

// UploadRateLimitConfig returns config for portfolio saves, which carry files
func UploadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:     10,
		Window:    time.Minute,
		KeyPrefix: "rl:upload:",
		KeyFunc:   clientIP,
	}
}

// windowCounter is the in-memory fallback: fixed windows per key.
type windowCounter struct {
	mu      sync.Mutex
	entries map[string]windowEntry
	sweptAt time.Time
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

func newWindowCounter() *windowCounter {
	return &windowCounter{entries: make(map[string]windowEntry)}
}

func (w *windowCounter) hit(key string, window time.Duration, now time.Time) (int, time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Expired windows are dropped at most once per window.
	if now.Sub(w.sweptAt) > window {
		for k, e := range w.entries {
			if now.After(e.resetAt) {
				delete(w.entries, k)
			}
		}
		w.sweptAt = now
	}

	e, ok := w.entries[key]
	if !ok || now.After(e.resetAt) {
		e = windowEntry{resetAt: now.Add(window)}
	}
	e.count++
	w.entries[key] = e
	return e.count, e.resetAt
}

// RateLimitMiddleware counts requests per key in Redis when available and in
// memory otherwise. A Redis error rejects the request when FailClosed is set.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = clientIP
	}
	if config.Redis == nil {
		config.Redis = redis.Client
	}
	memory := newWindowCounter()

	return func(c *gin.Context) {
		key := config.KeyPrefix + config.KeyFunc(c)
		now := time.Now()

		var count int
		var resetAt time.Time
		if client := config.Redis(); client != nil {
			var err error
			count, resetAt, err = countRedis(c.Request.Context(), client, key, config.Window, now)
			if err != nil {
				logRateLimitError(c, "redis_error", err)
				if config.FailClosed {
					response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
					c.Abort()
					return
				}
				count, resetAt = memory.hit(key, config.Window, now)
			}
		} else {
			count, resetAt = memory.hit(key, config.Window, now)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > config.Limit {
			retryAfter := int(resetAt.Sub(now).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			logRateLimitTriggered(c, key)

			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(config.Limit-count))
		c.Next()
	}
}

func countRedis(ctx context.Context, client *goredis.Client, key string, window time.Duration, now time.Time) (int, time.Time, error) {
	count, ttl, err := redis.IncrWindow(ctx, client, key, window)
	if err != nil {
		return 0, time.Time{}, err
	}
	return count, now.Add(ttl), nil
}

func logRateLimitTriggered(c *gin.Context, key string) {
	logger.Log.Warn("Rate limit triggered",
		"request_id", c.GetString(response.RequestIDKey),
		"ip", c.ClientIP(),
		"path", c.FullPath(),
		"key", key,
	)
}

func logRateLimitError(c *gin.Context, errorType string, err error) {
	logger.Log.Error("Rate limit check failed",
		"request_id", c.GetString(response.RequestIDKey),
		"error_type", errorType,
		"error", err,
	)
}

// GlobalRateLimitMiddleware applies default rate limiting to all routes
func GlobalRateLimitMiddleware() gin.HandlerFunc {
	return RateLimitMiddleware(DefaultRateLimitConfig())
}
