package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAside(t *testing.T) {
	setupTestRedis(t)
	ctx := context.Background()

	calls := 0
	var v string
	load := func() error {
		calls++
		v = "sistem informasi"
		return nil
	}

	err := Aside(ctx, ProgramKey("sistem-informasi"), &v, ProgramTTL, load)
	require.NoError(t, err)
	assert.Equal(t, "sistem informasi", v)
	assert.Equal(t, 1, calls)

	// Second call is served from cache.
	v = ""
	err = Aside(ctx, ProgramKey("sistem-informasi"), &v, ProgramTTL, load)
	require.NoError(t, err)
	assert.Equal(t, "sistem informasi", v)
	assert.Equal(t, 1, calls)
}

func TestAsideWithoutRedis(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	var v int
	err := Aside(ctx, NewsKey("wisuda-2026"), &v, NewsTTL, func() error {
		v = 42
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestInvalidate(t *testing.T) {
	setupTestRedis(t)
	ctx := context.Background()

	var v string
	err := Aside(ctx, WorkKey("karya-1"), &v, WorkTTL, func() error {
		v = "cached"
		return nil
	})
	require.NoError(t, err)

	InvalidateWork(ctx, "karya-1")

	calls := 0
	err = Aside(ctx, WorkKey("karya-1"), &v, WorkTTL, func() error {
		calls++
		v = "fresh"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "fresh", v)
}

func TestTokenBlacklist(t *testing.T) {
	mr := setupTestRedis(t)
	ctx := context.Background()

	assert.False(t, IsTokenBlacklisted(ctx, "jti-1"))

	require.NoError(t, BlacklistToken(ctx, "jti-1", time.Minute))
	assert.True(t, IsTokenBlacklisted(ctx, "jti-1"))

	mr.FastForward(2 * time.Minute)
	assert.False(t, IsTokenBlacklisted(ctx, "jti-1"))
}

func TestKeyPrefix(t *testing.T) {
	assert.Equal(t, "karya", keyPrefix(WorkKey("abc")))
	assert.Equal(t, "berita", keyPrefix(NewsKey("abc")))
	assert.Equal(t, "profile", keyPrefix(ProfileKey))
}
