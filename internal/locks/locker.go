// Package locks serialises state mutations per subscriber. A pause toggle and
// a selection write for the same subscriber never run at the same time.
package locks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/metrics"
)

const (
	defaultTTL   = 10 * time.Second
	defaultWait  = 3 * time.Second
	retryBackoff = 25 * time.Millisecond
)

// ErrBusy is returned when a lock could not be taken within the wait budget.
var ErrBusy = pkgerrors.New(pkgerrors.CodeBusy, "subscriber is being modified, retry shortly")

// Release gives a held lock back.
type Release func(ctx context.Context) error

// Locker grants exclusive access to a key.
type Locker interface {
	Lock(ctx context.Context, key string) (Release, error)
}

// SubscriberKey is the lock key shared by every mutation of a subscriber's state.
func SubscriberKey(subscriberID uuid.UUID) string {
	return fmt.Sprintf("subscriber:%s", subscriberID)
}

// WithLock runs fn while holding key. Release failures are reported only when fn succeeded.
func WithLock(ctx context.Context, l Locker, key string, fn func(ctx context.Context) error) (err error) {
	release, err := l.Lock(ctx, key)
	if err != nil {
		return err
	}
	defer func() {
		if relErr := release(context.WithoutCancel(ctx)); relErr != nil && err == nil {
			err = pkgerrors.Wrap(pkgerrors.CodeDependency, relErr, "release lock")
		}
	}()
	return fn(ctx)
}

func observe(m *metrics.EngineMetrics, start time.Time, err error) {
	result := "acquired"
	if err != nil {
		result = "busy"
	}
	m.ObserveLockWait(result, time.Since(start))
}
