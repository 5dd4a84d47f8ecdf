package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/phrazzld/microlesson-api/internal/platform/logger"
	"github.com/phrazzld/microlesson-api/internal/platform/ratelimit"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLimiter(t *testing.T, limit int, period time.Duration) (*ratelimit.Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter, err := ratelimit.NewLimiter(client, limit, period, nil)
	require.NoError(t, err)
	return limiter, mr
}

func TestNewLimiter_Validation(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer func() { _ = client.Close() }()

	_, err := ratelimit.NewLimiter(nil, 5, time.Second, nil)
	assert.Error(t, err)
	_, err = ratelimit.NewLimiter(client, 0, time.Second, nil)
	assert.Error(t, err)
	_, err = ratelimit.NewLimiter(client, 5, 0, nil)
	assert.Error(t, err)
}

func TestAllow_WithinLimit(t *testing.T) {
	limiter, _ := setupLimiter(t, 5, 5*time.Second)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		res, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d should be allowed", i)
		assert.Equal(t, 5-i, res.Remaining)
	}
}

func TestAllow_ExceedsLimit(t *testing.T) {
	limiter, _ := setupLimiter(t, 5, 5*time.Second)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
	}

	res, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, res.RetryAfter, 5*time.Second)
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	limiter, _ := setupLimiter(t, 1, 5*time.Second)
	ctx := context.Background()

	res, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	res, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestAllow_WindowResets(t *testing.T) {
	limiter, mr := setupLimiter(t, 1, 5*time.Second)
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	res, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.False(t, res.Allowed)

	mr.FastForward(6 * time.Second)

	res, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestAllow_FailsOpen(t *testing.T) {
	limiter, mr := setupLimiter(t, 1, 5*time.Second)
	mr.Close()

	res, err := limiter.Allow(context.Background(), "10.0.0.1")
	assert.Error(t, err)
	assert.True(t, res.Allowed)
}

func TestAllow_FailOpenLogsComponent(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log, buf := logger.NewCapture()
	limiter, err := ratelimit.NewLimiter(client, 1, 5*time.Second, log)
	require.NoError(t, err)
	mr.Close()

	res, err := limiter.Allow(context.Background(), "10.0.0.1")
	require.Error(t, err)
	assert.True(t, res.Allowed)

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "rate_limiter", entries[0]["component"])
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := ratelimit.NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	_, err = ratelimit.NewRedisClient(context.Background(), "not a url")
	assert.Error(t, err)
}
