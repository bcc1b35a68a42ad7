package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedStats struct {
	Pending int `json:"pending"`
}

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	c := NewInMemoryCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "stats:u1", cachedStats{Pending: 3}, time.Minute))

	var got cachedStats
	found, err := c.Get(ctx, "stats:u1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, got.Pending)

	now = now.Add(2 * time.Minute)
	found, err = c.Get(ctx, "stats:u1", &got)
	require.NoError(t, err)
	assert.False(t, found, "entry should expire after ttl")

	require.NoError(t, c.Set(ctx, "stats:u2", cachedStats{Pending: 1}, 0))
	require.NoError(t, c.Delete(ctx, "stats:u2"))
	found, err = c.Get(ctx, "stats:u2", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInMemoryLocker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	l := NewInMemoryLocker()
	l.now = func() time.Time { return now }

	lease, ok, err := l.Acquire(ctx, "recurring", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.Acquire(ctx, "recurring", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while held")

	require.NoError(t, lease.Release(ctx))

	_, ok, err = l.Acquire(ctx, "recurring", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "acquire succeeds after release")

	now = now.Add(time.Minute)
	current, ok, err := l.Acquire(ctx, "recurring", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "expired lease can be taken over")

	require.NoError(t, lease.Release(ctx))
	_, ok, _ = l.Acquire(ctx, "recurring", 30*time.Second)
	assert.False(t, ok, "releasing an old lease must not drop the new holder")

	require.NoError(t, current.Release(ctx))
}
