package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/mealprep-backend/internal/locks"
)

const defaultLockTTL = 25 * time.Hour

// Lock coordinates exclusive cron runs across workers.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// tryLocker is the single-attempt side of locks.RedisLocker.
type tryLocker interface {
	TryLockFor(ctx context.Context, key string, ttl time.Duration) (locks.Release, bool, error)
}

// RedisLock holds one long-lived key for the duration of a cron cycle.
type RedisLock struct {
	locker  tryLocker
	key     string
	ttl     time.Duration
	release locks.Release
}

// NewRedisLock builds a cron lock on top of a redis locker.
func NewRedisLock(locker tryLocker, key string, ttl time.Duration) (*RedisLock, error) {
	if locker == nil {
		return nil, errors.New("redis locker required for cron lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{locker: locker, key: key, ttl: ttl}, nil
}

// Acquire makes one attempt; false means another worker holds the cycle.
func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	release, ok, err := l.locker.TryLockFor(ctx, l.key, l.ttl)
	if err != nil {
		return false, fmt.Errorf("acquire cron lock: %w", err)
	}
	if ok {
		l.release = release
	}
	return ok, nil
}

// Release gives the key back if this worker still owns it.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.release == nil {
		return nil
	}
	release := l.release
	l.release = nil
	if err := release(ctx); err != nil {
		return fmt.Errorf("release cron lock: %w", err)
	}
	return nil
}
