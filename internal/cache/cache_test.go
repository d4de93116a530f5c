package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := NewRedisClient(ctx, "redis://"+mr.Addr())
	require.NoError(t, err)
	c := NewRedisCache(client)
	defer c.Close()

	_, err = c.Get(ctx, "verify:a@b.c")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "verify:a@b.c", "123456", time.Minute))
	v, err := c.Get(ctx, "verify:a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "123456", v)

	mr.FastForward(61 * time.Second)
	_, err = c.Get(ctx, "verify:a@b.c")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	n, err := c.Del(ctx, "k", "absent")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	assert.NoError(t, c.Ping(ctx))
}

func TestNewRedisClientErrors(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "")
	assert.Error(t, err)

	_, err = NewRedisClient(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	now = now.Add(time.Minute)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "forever", "v", 0))
	now = now.Add(24 * time.Hour)
	_, err = c.Get(ctx, "forever")
	assert.NoError(t, err)

	n, err := c.Del(ctx, "forever", "k")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
