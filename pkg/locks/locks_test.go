package locks

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLockerSerializesHolders(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryLocker()

	release, err := locker.AcquireOrder(ctx, "order-1", time.Second)
	require.NoError(t, err)

	_, err = locker.AcquireOrder(ctx, "order-1", time.Second)
	assert.ErrorIs(t, err, ErrNotAcquired)

	// A different order is independent.
	otherRelease, err := locker.AcquireOrder(ctx, "order-2", time.Second)
	require.NoError(t, err)
	require.NoError(t, otherRelease(ctx))

	require.NoError(t, release(ctx))

	release2, err := locker.AcquireOrder(ctx, "order-1", time.Second)
	require.NoError(t, err)
	require.NoError(t, release2(ctx))
}

func TestMemoryLockerReleaseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryLocker()

	release, err := locker.AcquireOrder(ctx, "order-1", time.Second)
	require.NoError(t, err)

	require.NoError(t, release(ctx))
	require.NoError(t, release(ctx))

	_, err = locker.AcquireOrder(ctx, "order-1", time.Second)
	require.NoError(t, err)
}

func TestRedisLockerAcquireAndRelease(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	locker := NewRedisLocker(store)

	release, err := locker.AcquireOrder(ctx, "abc", 5*time.Second)
	require.NoError(t, err)

	_, err = locker.AcquireOrder(ctx, "abc", 5*time.Second)
	assert.ErrorIs(t, err, ErrNotAcquired)

	require.NoError(t, release(ctx))
	assert.Equal(t, 1, store.delCalls)

	// Calling release again must not delete a lock a new holder took.
	release2, err := locker.AcquireOrder(ctx, "abc", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, release(ctx))
	assert.Equal(t, 1, store.delCalls)
	require.NoError(t, release2(ctx))
}

type fakeStore struct {
	mu       sync.Mutex
	data     map[string]string
	delCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.data[key]; exists {
		return false, nil
	}
	f.data[key] = "held"
	return true, nil
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delCalls++
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeStore) OrderLockKey(orderID string) string {
	return "vh:lock:order:" + orderID
}
