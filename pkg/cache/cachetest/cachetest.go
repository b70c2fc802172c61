// Package cachetest holds the behaviour every cache.Store backend must share,
// written once and run against each implementation.
package cachetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"propertydata/pkg/cache"
)

// Clock is a manually advanced clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock frozen at start.
func NewClock(start time.Time) *Clock { return &Clock{now: start} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Factory builds an empty store with the given TTL reading time from clock.
type Factory func(t *testing.T, ttl time.Duration, clock cache.Clock) cache.Store

// Run exercises the cache.Store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	const ttl = time.Hour
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	t.Run("get on empty store is absent", func(t *testing.T) {
		s := newStore(t, ttl, NewClock(start).Now)
		_, ok, err := s.Get(context.Background(), "propertyvalue.com:nothing")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("set then get", func(t *testing.T) {
		clock := NewClock(start)
		s := newStore(t, ttl, clock.Now)
		ctx := context.Background()
		entry := cache.Entry{HTML: "<p>Land Size: 650m²</p>", Timestamp: clock.Now()}

		require.NoError(t, s.Set(ctx, "k", entry))
		got, ok, err := s.Get(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, entry.HTML, got.HTML)
		require.True(t, entry.Timestamp.Equal(got.Timestamp))

		has, err := s.Has(ctx, "k")
		require.NoError(t, err)
		require.True(t, has)
	})

	t.Run("expired entry is absent and evicted", func(t *testing.T) {
		clock := NewClock(start)
		s := newStore(t, ttl, clock.Now)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "k", cache.Entry{HTML: "old", Timestamp: clock.Now()}))

		clock.Advance(ttl)
		_, ok, err := s.Get(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok, "an entry exactly ttl old is still valid")

		clock.Advance(time.Second)
		_, ok, err = s.Get(ctx, "k")
		require.NoError(t, err)
		require.False(t, ok)

		has, err := s.Has(ctx, "k")
		require.NoError(t, err)
		require.False(t, has)

		n, err := s.ClearExpired(ctx)
		require.NoError(t, err)
		require.Zero(t, n, "the expired read already evicted the entry")
	})

	t.Run("set overwrites", func(t *testing.T) {
		clock := NewClock(start)
		s := newStore(t, ttl, clock.Now)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "k", cache.Entry{HTML: "a", Timestamp: clock.Now()}))
		require.NoError(t, s.Set(ctx, "k", cache.Entry{HTML: "b", Timestamp: clock.Now()}))

		got, ok, err := s.Get(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "b", got.HTML)
	})

	t.Run("delete and clear", func(t *testing.T) {
		clock := NewClock(start)
		s := newStore(t, ttl, clock.Now)
		ctx := context.Background()
		for i := range 3 {
			require.NoError(t, s.Set(ctx, fmt.Sprintf("k%d", i), cache.Entry{HTML: "x", Timestamp: clock.Now()}))
		}

		require.NoError(t, s.Delete(ctx, "k0"))
		require.NoError(t, s.Delete(ctx, "missing"))
		has, err := s.Has(ctx, "k0")
		require.NoError(t, err)
		require.False(t, has)

		require.NoError(t, s.Clear(ctx))
		for i := range 3 {
			has, err := s.Has(ctx, fmt.Sprintf("k%d", i))
			require.NoError(t, err)
			require.False(t, has)
		}
	})

	t.Run("clear expired counts removed entries", func(t *testing.T) {
		clock := NewClock(start)
		s := newStore(t, ttl, clock.Now)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "old1", cache.Entry{HTML: "x", Timestamp: clock.Now()}))
		require.NoError(t, s.Set(ctx, "old2", cache.Entry{HTML: "x", Timestamp: clock.Now()}))
		clock.Advance(2 * ttl)
		require.NoError(t, s.Set(ctx, "fresh", cache.Entry{HTML: "x", Timestamp: clock.Now()}))

		n, err := s.ClearExpired(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, n)

		has, err := s.Has(ctx, "fresh")
		require.NoError(t, err)
		require.True(t, has)
	})

	t.Run("concurrent use", func(t *testing.T) {
		clock := NewClock(start)
		s := newStore(t, ttl, clock.Now)
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				key := fmt.Sprintf("k%d", i%4)
				_ = s.Set(ctx, key, cache.Entry{HTML: "x", Timestamp: clock.Now()})
				_, _, _ = s.Get(ctx, key)
			}()
		}
		wg.Wait()

		for i := range 4 {
			has, err := s.Has(ctx, fmt.Sprintf("k%d", i))
			require.NoError(t, err)
			require.True(t, has)
		}
	})
}
