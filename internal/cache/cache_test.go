package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(t *testing.T, ttl time.Duration, max int) (*Cache[string], *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	c := New[string](Config{Name: t.Name(), TTL: ttl, MaxEntries: max}, WithClock(clock.Now))
	return c, clock
}

func TestCache_PutThenGet(t *testing.T) {
	c, _ := newTestCache(t, time.Hour, 10)

	c.Put("k", "v")
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestCache_MissingKey(t *testing.T) {
	c, _ := newTestCache(t, time.Hour, 10)

	_, ok := c.Get("nope")
	assert.False(t, ok)
}

func TestCache_TTLExpiry(t *testing.T) {
	c, clock := newTestCache(t, time.Minute, 10)
	c.Put("k", "v")

	clock.Advance(time.Minute)
	_, ok := c.Get("k")
	assert.True(t, ok, "an entry exactly TTL old is still live")

	clock.Advance(time.Nanosecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry is removed on read")
}

func TestCache_ReadDoesNotRenew(t *testing.T) {
	c, clock := newTestCache(t, time.Minute, 10)
	c.Put("k", "v")

	clock.Advance(50 * time.Second)
	_, ok := c.Get("k")
	require.True(t, ok)

	clock.Advance(11 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestCache_OverwriteRefreshesAge(t *testing.T) {
	c, clock := newTestCache(t, time.Minute, 10)
	c.Put("k", "old")
	clock.Advance(50 * time.Second)
	c.Put("k", "new")
	clock.Advance(50 * time.Second)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "new", got)
}

func TestCache_CapacityEvictsOldestInserted(t *testing.T) {
	const n = 3
	c, clock := newTestCache(t, time.Hour, n)

	for i := 0; i < n; i++ {
		c.Put(fmt.Sprintf("k%d", i), "v")
		clock.Advance(time.Second)
	}
	// Reading k0 must not protect it: eviction is by insertion age.
	_, ok := c.Get("k0")
	require.True(t, ok)

	c.Put("k3", "v")

	assert.Equal(t, n, c.Len())
	_, ok = c.Get("k0")
	assert.False(t, ok, "least recently inserted key is evicted")
	for _, k := range []string{"k1", "k2", "k3"} {
		_, ok := c.Get(k)
		assert.True(t, ok, k)
	}
}

func TestCache_SameTimestampEvictsByInsertionOrder(t *testing.T) {
	c, _ := newTestCache(t, time.Hour, 2)

	c.Put("a", "1")
	c.Put("b", "2")
	c.Put("c", "3")

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestCache_PutDropsExpiredBeforeCapacity(t *testing.T) {
	c, clock := newTestCache(t, time.Minute, 2)

	c.Put("stale", "x")
	clock.Advance(2 * time.Minute)
	c.Put("a", "1")
	c.Put("b", "2")

	assert.Equal(t, 2, c.Len())
	_, okA := c.Get("a")
	_, okB := c.Get("b")
	assert.True(t, okA)
	assert.True(t, okB)
}

func TestCache_ZeroCapacity(t *testing.T) {
	c, _ := newTestCache(t, time.Hour, 0)

	c.Put("k", "v")
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_NoTTL(t *testing.T) {
	c, clock := newTestCache(t, 0, 10)
	c.Put("k", "v")
	clock.Advance(24 * 365 * time.Hour)

	_, ok := c.Get("k")
	assert.True(t, ok)
}

func TestCache_DeleteAndPurge(t *testing.T) {
	c, _ := newTestCache(t, time.Hour, 10)
	c.Put("a", "1")
	c.Put("b", "2")

	c.Delete("a")
	assert.Equal(t, 1, c.Len())

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c, _ := newTestCache(t, time.Hour, 50)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("g%d-%d", g, i)
				c.Put(key, key)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 50)
}
