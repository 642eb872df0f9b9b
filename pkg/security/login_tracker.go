package security

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tarabaho-web/pkg/logger"
	"tarabaho-web/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
)

// LoginTrackerConfig holds configuration for login tracking
type LoginTrackerConfig struct {
	MaxAttempts   int           // Maximum failed attempts before block (default: 5)
	AttemptWindow time.Duration // Time window for tracking attempts (default: 15min)
	BlockDuration time.Duration // How long to block after max attempts (default: 15min)
	UseIPTracking bool          // Also track by IP address (default: true)
}

// DefaultLoginTrackerConfig returns sensible defaults
func DefaultLoginTrackerConfig() LoginTrackerConfig {
	return LoginTrackerConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
		UseIPTracking: true,
	}
}

// LoginTracker counts rejected Tarabaho logins and blocks a username (and
// optionally the client IP) after too many. Counters live in Redis when a
// client is given, otherwise in process memory.
type LoginTracker struct {
	config LoginTrackerConfig
	client *goredis.Client
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]trackerEntry
}

type trackerEntry struct {
	count     int
	expiresAt time.Time
}

func NewLoginTracker(client *goredis.Client, config LoginTrackerConfig) *LoginTracker {
	def := DefaultLoginTrackerConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = def.MaxAttempts
	}
	if config.AttemptWindow <= 0 {
		config.AttemptWindow = def.AttemptWindow
	}
	if config.BlockDuration <= 0 {
		config.BlockDuration = def.BlockDuration
	}
	return &LoginTracker{
		config:  config,
		client:  client,
		now:     time.Now,
		entries: make(map[string]trackerEntry),
	}
}

// Redis key patterns
const (
	failLoginUserPrefix    = "fail:login:user:"
	failLoginIPPrefix      = "fail:login:ip:"
	blockedLoginUserPrefix = "blocked:login:user:"
	blockedLoginIPPrefix   = "blocked:login:ip:"
)

// IsBlocked checks if the given username or IP is currently blocked
func (lt *LoginTracker) IsBlocked(ctx context.Context, username, ip string) (bool, error) {
	keys := []string{blockedLoginUserPrefix + username}
	if lt.config.UseIPTracking && ip != "" {
		keys = append(keys, blockedLoginIPPrefix+ip)
	}

	if lt.client == nil {
		for _, key := range keys {
			if lt.memoryGet(key) > 0 {
				return true, nil
			}
		}
		return false, nil
	}

	exists, err := lt.client.Exists(ctx, keys...).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check login block: %w", err)
	}
	return exists > 0, nil
}

// RecordFailedAttempt counts a rejected login and reports whether the
// username is now blocked.
func (lt *LoginTracker) RecordFailedAttempt(ctx context.Context, username, ip string) (bool, int, error) {
	userCount, err := lt.increment(ctx, failLoginUserPrefix+username, lt.config.AttemptWindow)
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment user counter: %w", err)
	}
	ipCount := 0
	if lt.config.UseIPTracking && ip != "" {
		ipCount, _ = lt.increment(ctx, failLoginIPPrefix+ip, lt.config.AttemptWindow) // Best effort
	}

	logger.Log.Warn("Login rejected", "username", username, "ip", ip, "attempts", userCount)

	if userCount < lt.config.MaxAttempts {
		return false, userCount, nil
	}
	if err := lt.block(ctx, blockedLoginUserPrefix+username); err != nil {
		return true, userCount, fmt.Errorf("failed to create block: %w", err)
	}
	// An IP trying many usernames is blocked at a higher threshold.
	if ipCount >= lt.config.MaxAttempts*3 {
		_ = lt.block(ctx, blockedLoginIPPrefix+ip)
	}
	logger.Log.Warn("Login blocked", "username", username, "ip", ip, "block_minutes", int(lt.config.BlockDuration.Minutes()))
	return true, userCount, nil
}

// ClearAttempts clears failed login attempts on successful login
func (lt *LoginTracker) ClearAttempts(ctx context.Context, username string) error {
	key := failLoginUserPrefix + username
	if lt.client == nil {
		lt.mu.Lock()
		delete(lt.entries, key)
		lt.mu.Unlock()
		return nil
	}
	if err := lt.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to clear user attempts: %w", err)
	}
	return nil
}

// BlockDuration is how long a block lasts; handlers use it for Retry-After.
func (lt *LoginTracker) BlockDuration() time.Duration {
	return lt.config.BlockDuration
}

func (lt *LoginTracker) increment(ctx context.Context, key string, ttl time.Duration) (int, error) {
	if lt.client == nil {
		lt.mu.Lock()
		defer lt.mu.Unlock()
		now := lt.now()
		e := lt.entries[key]
		if !now.Before(e.expiresAt) {
			e = trackerEntry{expiresAt: now.Add(ttl)}
		}
		e.count++
		lt.entries[key] = e
		return e.count, nil
	}

	count, _, err := redis.IncrWindow(ctx, lt.client, key, ttl)
	return count, err
}

func (lt *LoginTracker) block(ctx context.Context, key string) error {
	if lt.client == nil {
		lt.mu.Lock()
		lt.entries[key] = trackerEntry{count: 1, expiresAt: lt.now().Add(lt.config.BlockDuration)}
		lt.mu.Unlock()
		return nil
	}
	return lt.client.Set(ctx, key, "1", lt.config.BlockDuration).Err()
}

func (lt *LoginTracker) memoryGet(key string) int {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	e, ok := lt.entries[key]
	if !ok {
		return 0
	}
	if !lt.now().Before(e.expiresAt) {
		delete(lt.entries, key)
		return 0
	}
	return e.count
}
