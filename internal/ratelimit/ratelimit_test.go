package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/launchpad/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, srv
}

func TestTokenBucketExhaustsBurst(t *testing.T) {
	client, _ := newTestClient(t)
	bucket := NewTokenBucket(client)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := bucket.Allow(ctx, "bucket:a", 0.001, 3)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
	}

	res, err := bucket.Allow(ctx, "bucket:a", 0.001, 3)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
}

func TestTokenBucketRejectsInvalidArguments(t *testing.T) {
	client, _ := newTestClient(t)
	bucket := NewTokenBucket(client)

	_, err := bucket.Allow(context.Background(), "", 1, 1)
	assert.Error(t, err)
	_, err = bucket.Allow(context.Background(), "k", 0, 1)
	assert.Error(t, err)
	_, err = bucket.Allow(context.Background(), "k", 1, 0)
	assert.Error(t, err)

	var nilBucket *TokenBucket
	_, err = nilBucket.Allow(context.Background(), "k", 1, 1)
	assert.Error(t, err)
}

func TestLockerExclusive(t *testing.T) {
	client, _ := newTestClient(t)
	locker := NewLocker(client)
	ctx := context.Background()

	token, ok, err := locker.TryLock(ctx, "lock:customer:u1", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.TryLock(ctx, "lock:customer:u1", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, locker.Release(ctx, "lock:customer:u1", "someone-else"))
	_, ok, err = locker.TryLock(ctx, "lock:customer:u1", time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "release with a foreign token must not free the lock")

	require.NoError(t, locker.Release(ctx, "lock:customer:u1", token))
	_, ok, err = locker.TryLock(ctx, "lock:customer:u1", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLockerAcquireTimesOut(t *testing.T) {
	client, _ := newTestClient(t)
	locker := NewLocker(client)
	ctx := context.Background()

	_, ok, err := locker.TryLock(ctx, "lock:k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.Acquire(ctx, "lock:k", time.Minute, 60*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNilClientDisablesLocker(t *testing.T) {
	assert.Nil(t, NewLocker(nil))
	assert.Nil(t, NewTokenBucket(nil))
}

func TestAuthActionLimiter(t *testing.T) {
	client, _ := newTestClient(t)
	cfg := config.Config{Redis: config.RedisConfig{AuthActionRate: 0.001, AuthActionBurst: 2}}
	limiter := NewAuthActionLimiter(cfg, NewTokenBucket(client), nil, zap.NewNop())
	ctx := context.Background()

	assert.True(t, limiter.Allow(ctx, "login", "10.0.0.1").Allowed)
	assert.True(t, limiter.Allow(ctx, "login", "10.0.0.1").Allowed)
	assert.False(t, limiter.Allow(ctx, "login", "10.0.0.1").Allowed)

	assert.True(t, limiter.Allow(ctx, "login", "10.0.0.2").Allowed, "buckets are per client")
	assert.True(t, limiter.Allow(ctx, "signup", "10.0.0.1").Allowed, "buckets are per action")
}

func TestAuthActionLimiterFailsOpen(t *testing.T) {
	client, srv := newTestClient(t)
	cfg := config.Config{Redis: config.RedisConfig{AuthActionRate: 1, AuthActionBurst: 1}}
	limiter := NewAuthActionLimiter(cfg, NewTokenBucket(client), nil, zap.NewNop())

	srv.Close()
	assert.True(t, limiter.Allow(context.Background(), "login", "10.0.0.1").Allowed)

	disabled := NewAuthActionLimiter(cfg, nil, nil, zap.NewNop())
	assert.False(t, disabled.Enabled())
	assert.True(t, disabled.Allow(context.Background(), "login", "10.0.0.1").Allowed)
}
