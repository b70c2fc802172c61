// Package rediscache is a cache.Store backed by Redis, for deployments where
// several engine processes should share one page cache.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"propertydata/pkg/cache"
	"propertydata/pkg/logger"
	"propertydata/pkg/serrors"
)

// DefaultPrefix namespaces page cache keys inside a shared Redis database.
const DefaultPrefix = "pagecache:"

const scanBatch = 200

// evictIfUnchanged deletes KEYS[1] only while it still holds ARGV[1], so an
// entry written after the stale one was read survives the eviction.
var evictIfUnchanged = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`) //nolint: gochecknoglobals

// Options configures a Store.
type Options struct {
	// Addr is host:port of the Redis server.
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every key. Defaults to DefaultPrefix.
	Prefix string
	// TTL defaults to cache.DefaultTTL.
	TTL time.Duration
	// Now defaults to time.Now.
	Now cache.Clock
}

// Store keeps each entry as a JSON document under Prefix+key.
//
// Expiry is decided on read against the injected clock, like every other
// backend. Redis' own key expiry is set to twice the TTL only to bound memory
// for keys nobody reads again.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	now    cache.Clock
}

var _ cache.Store = (*Store)(nil)

// New connects to Redis with opts.
func New(opts Options) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	return NewWithClient(client, opts)
}

// NewWithClient wraps an existing client. Addr, Password and DB in opts are
// ignored.
func NewWithClient(client *redis.Client, opts Options) *Store {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.TTL <= 0 {
		opts.TTL = cache.DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Store{client: client, prefix: opts.Prefix, ttl: opts.TTL, now: opts.Now}
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return serrors.Wrap(serrors.ErrUnavailable, err, "could not ping redis")
	}

	return nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Get(ctx context.Context, key string) (cache.Entry, bool, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return cache.Entry{}, false, nil
	}
	if err != nil {
		return cache.Entry{}, false, serrors.Wrap(serrors.ErrUnavailable, err, "could not get %s", key)
	}

	entry, ok := s.decode(ctx, key, raw)
	if !ok || cache.IsExpired(entry, s.ttl, s.now()) {
		if err := evictIfUnchanged.Run(ctx, s.client, []string{s.prefix + key}, raw).Err(); err != nil {
			return cache.Entry{}, false, serrors.Wrap(serrors.ErrUnavailable, err, "could not evict %s", key)
		}

		return cache.Entry{}, false, nil
	}

	return entry, true, nil
}

func (s *Store) Set(ctx context.Context, key string, entry cache.Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("could not encode cache entry: %w", err)
	}

	if err := s.client.Set(ctx, s.prefix+key, raw, 2*s.ttl).Err(); err != nil {
		return serrors.Wrap(serrors.ErrUnavailable, err, "could not set %s", key)
	}

	return nil
}

func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.Get(ctx, key)

	return ok, err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return serrors.Wrap(serrors.ErrUnavailable, err, "could not delete %s", key)
	}

	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	_, err := s.sweep(ctx, func(string, []byte) bool { return true })

	return err
}

func (s *Store) ClearExpired(ctx context.Context) (int, error) {
	now := s.now()

	return s.sweep(ctx, func(key string, raw []byte) bool {
		entry, ok := s.decode(ctx, key, raw)

		return !ok || cache.IsExpired(entry, s.ttl, now)
	})
}

// sweep walks every key under the prefix with SCAN and deletes those for
// which drop returns true, unless they were rewritten in the meantime.
func (s *Store) sweep(ctx context.Context, drop func(key string, raw []byte) bool) (int, error) {
	removed := 0
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", scanBatch).Result()
		if err != nil {
			return removed, serrors.Wrap(serrors.ErrUnavailable, err, "could not scan keys")
		}

		if len(keys) > 0 {
			values, err := s.client.MGet(ctx, keys...).Result()
			if err != nil {
				return removed, serrors.Wrap(serrors.ErrUnavailable, err, "could not read keys")
			}

			pipe := s.client.Pipeline()
			var evictions []*redis.Cmd
			for i, v := range values {
				str, ok := v.(string)
				if !ok {
					continue // deleted since SCAN returned it
				}
				if drop(keys[i][len(s.prefix):], []byte(str)) {
					evictions = append(evictions, evictIfUnchanged.Eval(ctx, pipe, []string{keys[i]}, str))
				}
			}

			if len(evictions) > 0 {
				if _, err := pipe.Exec(ctx); err != nil {
					return removed, serrors.Wrap(serrors.ErrUnavailable, err, "could not delete keys")
				}
				for _, cmd := range evictions {
					n, _ := cmd.Int()
					removed += n
				}
			}
		}

		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}

func (s *Store) decode(ctx context.Context, key string, raw []byte) (cache.Entry, bool) {
	var entry cache.Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		logger.Warn(ctx, "dropping undecodable cache entry", zap.String("key", key), zap.Error(err))

		return cache.Entry{}, false
	}

	return entry, true
}
