// Package lock provides a Redis-backed implementation of tx.Locker.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"repairdesk/internal/core/apperror"
	"repairdesk/internal/core/tx"
	"repairdesk/pkg/logger"
)

var _ tx.Locker = (*RedisLocker)(nil)

// Options configures lock acquisition.
type Options struct {
	// TTL bounds how long a crashed holder can block others.
	TTL time.Duration
	// RetryWait is the pause between attempts.
	RetryWait time.Duration
	// Retries is the number of extra attempts before giving up.
	Retries int
}

// DefaultOptions returns the options used when a field is left zero.
func DefaultOptions() Options {
	return Options{TTL: 30 * time.Second, RetryWait: 50 * time.Millisecond, Retries: 100}
}

// RedisLocker hands out per-key locks held in Redis.
type RedisLocker struct {
	client *redislock.Client
	opts   Options
}

// NewRedisLocker creates a locker on client.
func NewRedisLocker(client redis.UniversalClient, opts Options) *RedisLocker {
	def := DefaultOptions()
	if opts.TTL <= 0 {
		opts.TTL = def.TTL
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = def.RetryWait
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	return &RedisLocker{client: redislock.New(client), opts: opts}
}

// Acquire blocks until key is held, the retries run out or ctx ends. A lock
// that could not be obtained yields a RESOURCE_LOCKED error.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	lk, err := l.client.Obtain(ctx, key, l.opts.TTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.opts.RetryWait), l.opts.Retries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		logger.Warn(ctx, "lock busy", "key", key)
		return nil, apperror.NewLocked(key)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}

	logger.Debug(ctx, "lock acquired", "key", key, "ttl", l.opts.TTL)
	return func(ctx context.Context) error {
		if err := lk.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("release lock %s: %w", key, err)
		}
		return nil
	}, nil
}
