package locks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotAcquired indicates another holder currently owns the lock.
var ErrNotAcquired = errors.New("lock not acquired")

// ReleaseFunc releases a held lock. Safe to call once.
type ReleaseFunc func(context.Context) error

// OrderLocker serializes writers on a single order. The TTL bounds how long a
// crashed holder can block other writers.
type OrderLocker interface {
	AcquireOrder(ctx context.Context, orderID string, ttl time.Duration) (ReleaseFunc, error)
}

type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	OrderLockKey(orderID string) string
}

// RedisLocker implements OrderLocker on top of SET NX with expiry.
type RedisLocker struct {
	store redisStore
}

// NewRedisLocker wires the locker to a redis client.
func NewRedisLocker(store redisStore) *RedisLocker {
	return &RedisLocker{store: store}
}

// AcquireOrder takes the per-order lock or returns ErrNotAcquired if a
// concurrent writer holds it.
func (l *RedisLocker) AcquireOrder(ctx context.Context, orderID string, ttl time.Duration) (ReleaseFunc, error) {
	key := l.store.OrderLockKey(orderID)
	token := uuid.NewString()

	ok, err := l.store.SetNX(ctx, key, token, ttl)
	if err != nil {
		return nil, fmt.Errorf("acquiring order lock: %w", err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}

	var once sync.Once
	release := func(releaseCtx context.Context) error {
		var relErr error
		once.Do(func() {
			relErr = l.store.Del(releaseCtx, key)
		})
		return relErr
	}
	return release, nil
}

// MemoryLocker is an in-process OrderLocker used in tests and single-node
// deployments without redis.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewMemoryLocker returns an empty in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]struct{})}
}

// AcquireOrder takes the per-order lock or returns ErrNotAcquired. The TTL is
// ignored; in-process locks die with the process.
func (l *MemoryLocker) AcquireOrder(ctx context.Context, orderID string, ttl time.Duration) (ReleaseFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.held[orderID]; exists {
		return nil, ErrNotAcquired
	}
	l.held[orderID] = struct{}{}

	var once sync.Once
	release := func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, orderID)
			l.mu.Unlock()
		})
		return nil
	}
	return release, nil
}
