package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testClock(start time.Time) (func() time.Time, func(time.Duration)) {
	current := start
	clock := func() time.Time { return current }
	advance := func(d time.Duration) { current = current.Add(d) }
	return clock, advance
}

func TestCacheRoundTrip(t *testing.T) {
	clock, _ := testClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	c := New[string](Config{TTL: 30 * time.Second, MaxSize: 10, Clock: clock})

	_, ok := c.Get("missing")
	require.False(t, ok)

	c.Set("alpha", "one")
	got, ok := c.Get("alpha")
	require.True(t, ok)
	require.Equal(t, "one", got)
}

func TestCacheExpiry(t *testing.T) {
	clock, advance := testClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	c := New[string](Config{TTL: 30 * time.Second, MaxSize: 10, Clock: clock})

	c.Set("alpha", "one")

	advance(29 * time.Second)
	_, ok := c.Get("alpha")
	require.True(t, ok)

	advance(time.Second)
	_, ok = c.Get("alpha")
	require.False(t, ok, "entry at exactly TTL must be expired")
	require.Equal(t, 0, c.Len(), "expired entry is deleted on access")
}

func TestCachePerEntryTTL(t *testing.T) {
	clock, advance := testClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	c := New[int](Config{TTL: time.Minute, MaxSize: 10, Clock: clock})

	c.SetWithTTL("short", 1, 5*time.Second)
	c.Set("long", 2)

	advance(10 * time.Second)
	_, ok := c.Get("short")
	require.False(t, ok)
	_, ok = c.Get("long")
	require.True(t, ok)
}

func TestCacheFIFOEviction(t *testing.T) {
	clock, _ := testClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	c := New[int](Config{TTL: time.Minute, MaxSize: 3, Clock: clock})

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Set("d", 4)

	_, ok := c.Get("a")
	require.False(t, ok, "oldest entry evicts first")
	for _, key := range []string{"b", "c", "d"} {
		_, ok := c.Get(key)
		require.True(t, ok, "key %s", key)
	}
}

func TestCacheGetDoesNotRefreshPosition(t *testing.T) {
	clock, _ := testClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	c := New[int](Config{TTL: time.Minute, MaxSize: 3, Clock: clock})

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// An LRU would move "a" to the back here. FIFO must not.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("d", 4)
	_, ok = c.Get("a")
	require.False(t, ok, "recently read entry still evicts first")
}

func TestCacheOverwriteKeepsPosition(t *testing.T) {
	clock, _ := testClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	c := New[int](Config{TTL: time.Minute, MaxSize: 3, Clock: clock})

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Set("a", 10)
	require.Equal(t, 3, c.Len(), "overwrite must not evict")

	c.Set("d", 4)
	_, ok := c.Get("a")
	require.False(t, ok, "overwritten entry keeps its original insertion slot")

	got, ok := c.Get("b")
	require.True(t, ok)
	require.Equal(t, 2, got)
}

func TestCacheDelete(t *testing.T) {
	clock, _ := testClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	c := New[int](Config{Clock: clock})

	c.Set("a", 1)
	require.True(t, c.Delete("a"))
	require.False(t, c.Delete("a"))
	require.Equal(t, 0, c.Len())
}

func TestCacheDeletePattern(t *testing.T) {
	clock, _ := testClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	c := New[int](Config{Clock: clock})

	c.Set("alpha|", 1)
	c.Set("alpha|beta", 2)
	c.Set("gamma|", 3)

	removed, err := c.DeletePattern(`^alpha\|`)
	require.NoError(t, err)
	require.Equal(t, 2, removed)
	require.Equal(t, []string{"gamma|"}, c.Keys())

	_, err = c.DeletePattern("(")
	require.Error(t, err)
}

func TestCacheCleanup(t *testing.T) {
	clock, advance := testClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	c := New[int](Config{TTL: time.Minute, MaxSize: 10, Clock: clock})

	c.SetWithTTL("stale1", 1, 10*time.Second)
	c.SetWithTTL("stale2", 2, 20*time.Second)
	c.Set("fresh", 3)

	advance(30 * time.Second)
	require.Equal(t, 2, c.Cleanup())
	require.Equal(t, []string{"fresh"}, c.Keys())
	require.Equal(t, 0, c.Cleanup())
}

func TestCacheKeysInsertionOrder(t *testing.T) {
	clock, _ := testClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	c := New[int](Config{Clock: clock})

	c.Set("c", 1)
	c.Set("a", 2)
	c.Set("b", 3)

	require.Equal(t, []string{"c", "a", "b"}, c.Keys())
}

func TestCacheDefaults(t *testing.T) {
	c := New[int](Config{})
	require.Equal(t, DefaultTTL, c.ttl)
	require.Equal(t, DefaultMaxSize, c.maxSize)
}
