package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

func TestMemoryRoundTripCopiesValue(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	in := page{Items: []string{"a"}, Total: 1}
	require.NoError(t, c.Set(ctx, "k", in, time.Minute))
	in.Items[0] = "mutated"

	var out page
	found, err := c.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a"}, out.Items)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", 1, time.Second))
	now = now.Add(2 * time.Second)

	var out int
	found, err := c.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryIncrAndDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	n, err := c.Incr(ctx, "v")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = c.Incr(ctx, "v")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var v int64
	found, err := c.Get(ctx, "v", &v)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(2), v)

	require.NoError(t, c.Delete(ctx, "v"))
	found, _ = c.Get(ctx, "v", &v)
	assert.False(t, found)
}

func TestNopNeverHits(t *testing.T) {
	ctx := context.Background()
	var c Cache = Nop{}
	require.NoError(t, c.Set(ctx, "k", 1, 0))
	var out int
	found, err := c.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryBoundedBySize(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryWithLimits(100, time.Minute)

	for i := 0; i < 1000; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("catalog:%d:page=1", i), i, time.Minute))
	}
	assert.Equal(t, 100, c.Len())

	var out int
	found, err := c.Get(ctx, "catalog:999:page=1", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 999, out)

	found, err = c.Get(ctx, "catalog:0:page=1", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryEvictsExpiredKeysWithoutLookup(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryWithLimits(10000, 50*time.Millisecond)

	_, err := c.Incr(ctx, "catalog:version")
	require.NoError(t, err)
	for i := 0; i < 500; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("catalog:%d:page=1", i), i, time.Hour))
	}
	require.Equal(t, 500, c.Len())

	assert.Eventually(t, func() bool { return c.Len() == 0 }, 2*time.Second, 10*time.Millisecond)

	var version int64
	found, err := c.Get(ctx, "catalog:version", &version)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(1), version)
}
