package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"propertydata/pkg/cache"
	"propertydata/pkg/cache/cachetest"
	"propertydata/pkg/cache/memory"
)

func TestStoreContract(t *testing.T) {
	cachetest.Run(t, func(_ *testing.T, ttl time.Duration, clock cache.Clock) cache.Store {
		return memory.New(memory.Options{TTL: ttl, Now: clock})
	})
}

func TestExpiredReadPurgesEntry(t *testing.T) {
	clock := cachetest.NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	s := memory.New(memory.Options{TTL: time.Minute, Now: clock.Now})
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", cache.Entry{HTML: "x", Timestamp: clock.Now()}))
	require.Equal(t, 1, s.Len())

	clock.Advance(2 * time.Minute)
	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, s.Len(), "reading an expired entry removes it")
}

func TestDefaults(t *testing.T) {
	s := memory.New(memory.Options{})
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", cache.Entry{HTML: "x", Timestamp: time.Now().Add(-23 * time.Hour)}))

	has, err := s.Has(ctx, "k")
	require.NoError(t, err)
	require.True(t, has, "default ttl is a day")

	require.Same(t, memory.Default(), memory.Default())
}
