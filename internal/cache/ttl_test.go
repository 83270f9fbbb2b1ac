package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSetRoundTrip(t *testing.T) {
	c := New(10, time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", 42)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	// Overwrite replaces, never duplicates.
	c.Set("a", 43)
	v, _ = c.Get("a")
	assert.Equal(t, 43, v)
	assert.Equal(t, 1, c.Len())
}

func TestExpiry(t *testing.T) {
	c := New(10, 15*time.Millisecond)
	c.Set("a", "value")

	_, ok := c.Get("a")
	require.True(t, ok)

	time.Sleep(25 * time.Millisecond)
	_, ok = c.Get("a")
	assert.False(t, ok, "expired entries must not be served")
	assert.Zero(t, c.Len(), "expired entries are dropped on lookup")
}

func TestLRUEviction(t *testing.T) {
	c := New(3, time.Minute)
	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}

	// Touch k0 so k1 becomes the eviction candidate.
	_, ok := c.Get("k0")
	require.True(t, ok)

	c.Set("k3", 3)
	assert.Equal(t, 3, c.Len())

	_, ok = c.Get("k1")
	assert.False(t, ok, "least recently used entry must be evicted")
	_, ok = c.Get("k0")
	assert.True(t, ok)
	_, ok = c.Get("k3")
	assert.True(t, ok)
}

func TestStats(t *testing.T) {
	c := New(10, time.Minute)
	c.Set("a", 1)

	c.Get("a")
	c.Get("a")
	c.Get("nope")

	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestZeroConfigDefaults(t *testing.T) {
	c := New(0, 0)
	c.Set("a", 1)
	_, ok := c.Get("a")
	assert.True(t, ok)
}
