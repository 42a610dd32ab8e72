package locks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/metrics"
)

// Store is the slice of the redis client the lock needs.
type Store interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	DeleteIfOwner(ctx context.Context, key, token string) (bool, error)
	LockKey(scope, id string) string
}

// RedisOptions tune a RedisLocker.
type RedisOptions struct {
	TTL     time.Duration
	Wait    time.Duration
	Metrics *metrics.EngineMetrics
}

// RedisLocker holds locks as redis keys with an owner token and TTL, so
// several API replicas share them.
type RedisLocker struct {
	store   Store
	ttl     time.Duration
	wait    time.Duration
	metrics *metrics.EngineMetrics
}

// NewRedisLocker builds a redis-backed locker.
func NewRedisLocker(store Store, opts RedisOptions) (*RedisLocker, error) {
	if store == nil {
		return nil, errors.New("redis store required for locker")
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.Wait < 0 {
		opts.Wait = defaultWait
	}
	return &RedisLocker{store: store, ttl: opts.TTL, wait: opts.Wait, metrics: opts.Metrics}, nil
}

// TryLock makes a single attempt and reports whether it won.
func (l *RedisLocker) TryLock(ctx context.Context, key string) (Release, bool, error) {
	return l.tryLock(ctx, key, l.ttl)
}

// TryLockFor is TryLock with an explicit TTL, for long-held locks such as cron runs.
func (l *RedisLocker) TryLockFor(ctx context.Context, key string, ttl time.Duration) (Release, bool, error) {
	if ttl <= 0 {
		ttl = l.ttl
	}
	return l.tryLock(ctx, key, ttl)
}

func (l *RedisLocker) tryLock(ctx context.Context, key string, ttl time.Duration) (Release, bool, error) {
	redisKey := l.store.LockKey(key, "")
	owner := uuid.NewString()
	ok, err := l.store.SetNX(ctx, redisKey, owner, ttl)
	if err != nil {
		return nil, false, fmt.Errorf("setnx: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	return l.releaser(redisKey, owner), true, nil
}

// Lock retries TryLock until it wins, the wait budget runs out or ctx ends.
func (l *RedisLocker) Lock(ctx context.Context, key string) (Release, error) {
	start := time.Now()
	deadline := start.Add(l.wait)
	for {
		release, ok, err := l.TryLock(ctx, key)
		if err != nil {
			observe(l.metrics, start, err)
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire lock")
		}
		if ok {
			observe(l.metrics, start, nil)
			return release, nil
		}
		if !time.Now().Add(retryBackoff).Before(deadline) {
			observe(l.metrics, start, ErrBusy)
			return nil, ErrBusy
		}
		select {
		case <-ctx.Done():
			observe(l.metrics, start, ctx.Err())
			return nil, pkgerrors.Wrap(pkgerrors.CodeBusy, ctx.Err(), "acquire lock")
		case <-time.After(retryBackoff):
		}
	}
}

// releaser deletes the key only while it still holds our owner token, so an
// expired lock taken over by someone else is left alone.
func (l *RedisLocker) releaser(redisKey, owner string) Release {
	return func(ctx context.Context) error {
		if _, err := l.store.DeleteIfOwner(ctx, redisKey, owner); err != nil {
			return fmt.Errorf("release lock: %w", err)
		}
		return nil
	}
}
