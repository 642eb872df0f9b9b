// Package redis holds the process-wide Redis client shared by sessions,
// rate limits and the login tracker.
package redis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	client     *redis.Client
	clientOnce sync.Once
	clientErr  error
)

// Config holds Redis connection configuration
type Config struct {
	URL      string // redis://host:port, or rediss:// for TLS (Upstash)
	Password string // overrides the password in URL
}

// Client returns the shared client, or nil when Redis is not in use.
func Client() *redis.Client {
	return client
}

// Initialize connects once. Later calls return the first result.
func Initialize(cfg Config) error {
	clientOnce.Do(func() {
		opts, err := Options(cfg)
		if err != nil {
			clientErr = err
			return
		}

		c := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Ping(ctx).Err(); err != nil {
			_ = c.Close()
			clientErr = fmt.Errorf("redis: connection failed: %w", err)
			return
		}
		client = c
	})
	return clientErr
}

// Options turns cfg into client options. A rediss:// URL enables TLS and
// defaults the port to 6379.
func Options(cfg Config) (*redis.Options, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis: UPSTASH_REDIS_URL not configured")
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("redis: unsupported scheme %q", u.Scheme)
	}

	addr := u.Host
	if u.Port() == "" {
		addr = u.Hostname() + ":6379"
	}
	password := cfg.Password
	if password == "" && u.User != nil {
		password, _ = u.User.Password()
	}

	opts := &redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	}
	if u.Scheme == "rediss" {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: u.Hostname(),
		}
	}
	return opts, nil
}

// Close closes the Redis connection gracefully.
func Close() error {
	if client != nil {
		return client.Close()
	}
	return nil
}

// HealthCheck pings the shared client.
func HealthCheck(ctx context.Context) error {
	if client == nil {
		return errors.New("redis: client not initialized")
	}
	return client.Ping(ctx).Err()
}

// KEYS[1] = counter key, ARGV[1] = window in seconds.
// Returns {count, ttl}; the TTL is set by the first increment of a window.
const incrWindowScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

// IncrWindow atomically counts one hit on key in a fixed window and returns
// the count so far and the time left in the window.
func IncrWindow(ctx context.Context, c *redis.Client, key string, window time.Duration) (int, time.Duration, error) {
	result, err := c.Eval(ctx, incrWindowScript, []string{key}, int(window.Seconds())).Result()
	if err != nil {
		return 0, 0, err
	}
	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, 0, errors.New("redis: unexpected counter result")
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)
	return int(count), time.Duration(ttl) * time.Second, nil
}
