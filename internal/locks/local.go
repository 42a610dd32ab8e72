package locks

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/metrics"
)

// LocalLocker is an in-process keyed mutex for single-replica runs and tests.
type LocalLocker struct {
	mu      sync.Mutex
	slots   map[string]chan struct{}
	wait    time.Duration
	metrics *metrics.EngineMetrics
}

// NewLocalLocker builds an in-process locker. A zero wait means wait until ctx ends.
func NewLocalLocker(wait time.Duration, m *metrics.EngineMetrics) *LocalLocker {
	return &LocalLocker{slots: map[string]chan struct{}{}, wait: wait, metrics: m}
}

func (l *LocalLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (Release, error) {
	start := time.Now()
	ch := l.slot(key)

	var timeout <-chan time.Time
	if l.wait > 0 {
		timer := time.NewTimer(l.wait)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case ch <- struct{}{}:
		observe(l.metrics, start, nil)
		var once sync.Once
		return func(context.Context) error {
			once.Do(func() { <-ch })
			return nil
		}, nil
	case <-timeout:
		observe(l.metrics, start, ErrBusy)
		return nil, ErrBusy
	case <-ctx.Done():
		observe(l.metrics, start, ctx.Err())
		return nil, pkgerrors.Wrap(pkgerrors.CodeBusy, ctx.Err(), "acquire lock")
	}
}
