// Package memory is the in-process page cache.
package memory

import (
	"context"
	"sync"
	"time"

	"propertydata/pkg/cache"
)

// Options configures a Store.
type Options struct {
	// TTL defaults to cache.DefaultTTL when zero.
	TTL time.Duration
	// Now defaults to time.Now.
	Now cache.Clock
}

// Store keeps entries in a map guarded by a RWMutex. Reads that find an
// expired entry take the write lock to evict it.
type Store struct {
	mu      sync.RWMutex
	entries map[string]cache.Entry
	ttl     time.Duration
	now     cache.Clock
}

var _ cache.Store = (*Store)(nil)

// New returns an empty Store.
func New(opts Options) *Store {
	if opts.TTL <= 0 {
		opts.TTL = cache.DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Store{entries: make(map[string]cache.Entry), ttl: opts.TTL, now: opts.Now}
}

var (
	defaultStore *Store    //nolint: gochecknoglobals
	defaultOnce  sync.Once //nolint: gochecknoglobals
)

// Default returns the process-wide Store with default options. Only the
// command layer should reach for it; everything else takes a cache.Store.
func Default() *Store {
	defaultOnce.Do(func() { defaultStore = New(Options{}) })

	return defaultStore
}

func (s *Store) Get(_ context.Context, key string) (cache.Entry, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return cache.Entry{}, false, nil
	}

	if cache.IsExpired(entry, s.ttl, s.now()) {
		s.evict(key, entry)

		return cache.Entry{}, false, nil
	}

	return entry, true, nil
}

func (s *Store) Set(_ context.Context, key string, entry cache.Entry) error {
	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()

	return nil
}

func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.Get(ctx, key)

	return ok, err
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()

	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	clear(s.entries)
	s.mu.Unlock()

	return nil
}

func (s *Store) ClearExpired(_ context.Context) (int, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if cache.IsExpired(entry, s.ttl, now) {
			delete(s.entries, key)
			removed++
		}
	}

	return removed, nil
}

// Len returns the number of stored entries, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// evict removes key only if it still holds the expired entry that was read,
// so a concurrent Set of a fresh page is not lost.
func (s *Store) evict(key string, stale cache.Entry) {
	s.mu.Lock()
	if cur, ok := s.entries[key]; ok && cur.Timestamp.Equal(stale.Timestamp) && cur.HTML == stale.HTML {
		delete(s.entries, key)
	}
	s.mu.Unlock()
}
