package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewJobLock(t *testing.T) {
	_, err := NewJobLock(nil)
	require.Error(t, err)
}

func TestJobLock_TryLock(t *testing.T) {
	ctx := context.Background()
	ttl := 5 * time.Minute

	t.Run("should acquire and release with the same token", func(t *testing.T) {
		store := &MockStore{}
		var token any
		store.On("SetNX", ctx, "orderflow:lock:reconcile", mock.AnythingOfType("string"), ttl).
			Run(func(args mock.Arguments) { token = args.Get(2) }).
			Return(goredis.NewBoolResult(true, nil)).Once()
		store.On("Eval", ctx, releaseScript, []string{"orderflow:lock:reconcile"}, mock.Anything).
			Run(func(args mock.Arguments) {
				assert.Equal(t, []any{token}, args.Get(3))
			}).
			Return(goredis.NewCmdResult(int64(1), nil)).Once()
		lock, err := NewJobLock(store)
		require.NoError(t, err)

		release, acquired, err := lock.TryLock(ctx, "reconcile", ttl)

		require.NoError(t, err)
		require.True(t, acquired)
		require.NotNil(t, release)
		require.NoError(t, release(ctx))
		store.AssertExpectations(t)
	})

	t.Run("should report lock held elsewhere", func(t *testing.T) {
		store := &MockStore{}
		store.On("SetNX", ctx, "orderflow:lock:reconcile", mock.Anything, ttl).
			Return(goredis.NewBoolResult(false, nil)).Once()
		lock, err := NewJobLock(store)
		require.NoError(t, err)

		release, acquired, err := lock.TryLock(ctx, "reconcile", ttl)

		require.NoError(t, err)
		assert.False(t, acquired)
		assert.Nil(t, release)
		store.AssertNotCalled(t, "Eval", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should wrap redis errors", func(t *testing.T) {
		store := &MockStore{}
		boom := errors.New("connection reset")
		store.On("SetNX", ctx, "orderflow:lock:relay", mock.Anything, ttl).
			Return(goredis.NewBoolResult(false, boom)).Once()
		lock, err := NewJobLock(store)
		require.NoError(t, err)

		_, acquired, err := lock.TryLock(ctx, "relay", ttl)

		require.ErrorIs(t, err, boom)
		assert.False(t, acquired)
	})

	t.Run("should treat missing key on release as released", func(t *testing.T) {
		store := &MockStore{}
		store.On("SetNX", ctx, "orderflow:lock:relay", mock.Anything, ttl).
			Return(goredis.NewBoolResult(true, nil)).Once()
		store.On("Eval", ctx, releaseScript, []string{"orderflow:lock:relay"}, mock.Anything).
			Return(goredis.NewCmdResult(nil, goredis.Nil)).Once()
		lock, err := NewJobLock(store)
		require.NoError(t, err)

		release, _, err := lock.TryLock(ctx, "relay", ttl)
		require.NoError(t, err)

		require.NoError(t, release(ctx))
	})

	t.Run("should validate arguments", func(t *testing.T) {
		lock, err := NewJobLock(&MockStore{})
		require.NoError(t, err)

		_, _, err = lock.TryLock(ctx, "", ttl)
		require.Error(t, err)

		_, _, err = lock.TryLock(ctx, "relay", 0)
		require.Error(t, err)
	})
}
