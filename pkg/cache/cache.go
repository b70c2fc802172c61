// Package cache defines the page cache contract shared by the in-process,
// Redis and Postgres backends, plus the key builder that maps an address and
// a source onto one cache slot.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long a fetched page stays valid.
const DefaultTTL = 24 * time.Hour

// Entry is one cached page.
type Entry struct {
	HTML      string    `json:"html"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is a key/value page cache with lazy TTL expiry.
//
// Get and Has treat an entry older than the store's TTL as absent and evict
// it. Absence is never an error: the error return is reserved for backend
// failures. Implementations are safe for concurrent use.
//
//go:generate mockgen -destination=mock/mockcache.go -package=mockcache . Store
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry) error
	Has(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	// ClearExpired evicts every expired entry and returns how many it removed.
	ClearExpired(ctx context.Context) (int, error)
}

// IsExpired reports whether entry is older than ttl at now.
func IsExpired(entry Entry, ttl time.Duration, now time.Time) bool {
	return now.Sub(entry.Timestamp) > ttl
}

// Clock returns the current time. Stores take one so tests can move time.
type Clock func() time.Time
