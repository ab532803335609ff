package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memLockStore struct {
	values     map[string]string
	releaseErr error
}

func newMemLockStore() *memLockStore {
	return &memLockStore{values: map[string]string{}}
}

func (m *memLockStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

// CompareAndDelete checks and deletes under one call, like the Lua script.
func (m *memLockStore) CompareAndDelete(_ context.Context, key, expected string) (bool, error) {
	if m.releaseErr != nil {
		return false, m.releaseErr
	}
	current, ok := m.values[key]
	if !ok {
		return false, redis.Nil
	}
	if current != expected {
		return false, nil
	}
	delete(m.values, key)
	return true, nil
}

func (m *memLockStore) LockKey(name string) string { return "cc:lock:" + name }

func TestRedisLockAcquireRelease(t *testing.T) {
	store := newMemLockStore()
	first, err := NewRedisLock(store, "cron-worker", 0)
	require.NoError(t, err)
	second, err := NewRedisLock(store, "cron-worker", 0)
	require.NoError(t, err)

	ok, err := first.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, store.values, "cc:lock:cron-worker")

	ok, err = second.Acquire(context.Background())
	require.NoError(t, err)
	require.False(t, ok, "second worker must not take a held lock")
	require.NoError(t, second.Release(context.Background()), "releasing an unheld lock is a no-op")
	require.Contains(t, store.values, "cc:lock:cron-worker")

	require.NoError(t, first.Release(context.Background()))
	require.Empty(t, store.values)
}

func TestRedisLockReleaseAfterTakeover(t *testing.T) {
	store := newMemLockStore()
	lock, err := NewRedisLock(store, "cron-worker", time.Minute)
	require.NoError(t, err)

	ok, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	store.values["cc:lock:cron-worker"] = "other-host/123"
	require.ErrorIs(t, lock.Release(context.Background()), ErrLockLost)
	require.Equal(t, "other-host/123", store.values["cc:lock:cron-worker"])
}

func TestRedisLockReleaseReadError(t *testing.T) {
	store := newMemLockStore()
	lock, err := NewRedisLock(store, "cron-worker", time.Minute)
	require.NoError(t, err)
	_, err = lock.Acquire(context.Background())
	require.NoError(t, err)

	store.releaseErr = errors.New("redis down")
	require.Error(t, lock.Release(context.Background()))
}

func TestRedisLockReleaseAfterExpiry(t *testing.T) {
	store := newMemLockStore()
	lock, err := NewRedisLock(store, "cron-worker", time.Minute)
	require.NoError(t, err)
	_, err = lock.Acquire(context.Background())
	require.NoError(t, err)

	delete(store.values, "cc:lock:cron-worker")
	require.NoError(t, lock.Release(context.Background()), "an expired lock needs no release")
}

func TestNewRedisLockValidates(t *testing.T) {
	_, err := NewRedisLock(nil, "x", time.Minute)
	require.Error(t, err)
	_, err = NewRedisLock(newMemLockStore(), "", time.Minute)
	require.Error(t, err)
}
