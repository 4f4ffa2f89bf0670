package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ViBaTo/panel-control-tm/logger"
	"github.com/go-redis/redis/v8"
)

// ErrNotLockOwner is returned when a lock is released by someone who does not hold it.
var ErrNotLockOwner = errors.New("lock release failed: not the lock owner")

type RedisConfig struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	MinIdleConns int
	ReadTimeout  time.Duration
	MaxRetries   int
}

// NewRedisClient creates a Redis client with the provided configuration
func NewRedisClient(ctx context.Context, config RedisConfig, log *logger.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if config.PoolSize > 0 {
		opt.PoolSize = config.PoolSize
	}
	opt.MinIdleConns = config.MinIdleConns
	if config.DialTimeout > 0 {
		opt.DialTimeout = config.DialTimeout
	}
	if config.ReadTimeout > 0 {
		opt.ReadTimeout = config.ReadTimeout
	}
	opt.MaxRetries = config.MaxRetries

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis server: %w", err)
	}

	log.Infof("Redis client initialized with configuration: PoolSize=%d, MinIdleConns=%d, DialTimeout=%s, ReadTimeout=%s, MaxRetries=%d",
		opt.PoolSize, opt.MinIdleConns, opt.DialTimeout, opt.ReadTimeout, opt.MaxRetries)
	return client, nil
}

const releaseLockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

// Locker hands out short-lived distributed locks backed by SETNX.
type Locker struct {
	client  *redis.Client
	release *redis.Script
}

func NewLocker(client *redis.Client) *Locker {
	return &Locker{client: client, release: redis.NewScript(releaseLockScript)}
}

// Acquire tries to take the lock once.
func (l *Locker) Acquire(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if l == nil || l.client == nil {
		return false, errors.New("Redis client is not initialized")
	}
	return l.client.SetNX(ctx, key, value, ttl).Result()
}

// Release deletes the lock only when value still owns it.
func (l *Locker) Release(ctx context.Context, key, value string) error {
	if l == nil || l.client == nil {
		return errors.New("Redis client is not initialized")
	}
	result, err := l.release.Run(ctx, l.client, []string{key}, value).Int64()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if result == 0 {
		return ErrNotLockOwner
	}
	return nil
}

// MonitorRedisPool logs the connection pool statistics for monitoring
func MonitorRedisPool(client *redis.Client, log *logger.Logger) {
	stats := client.PoolStats()
	log.Infof("Redis pool stats: Total: %d, Idle: %d, Stale: %d", stats.TotalConns, stats.IdleConns, stats.StaleConns)
}
