// Package pgcache is a cache.Store backed by the page_cache table in Postgres.
package pgcache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // registers the postgres dialect
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	root "propertydata"
	"propertydata/pkg/cache"
	"propertydata/pkg/serrors"
)

const table = "page_cache"

// Options defines the connection and expiry settings of a Store.
type Options struct {
	Username string
	Password string
	Host     string
	// SslMode is passed through as the libpq sslmode parameter.
	SslMode  string
	Port     int
	Database string
	// ConnMaxLifetime is the maximum amount of time a connection may be reused.
	ConnMaxLifetime time.Duration
	// ConnMaxIdleTime is the maximum amount of time a connection may be idle.
	ConnMaxIdleTime    time.Duration
	MaxOpenConnections int
	MaxIdleConnections int

	// TTL defaults to cache.DefaultTTL.
	TTL time.Duration
	// Now defaults to time.Now.
	Now cache.Clock
}

// Builder is the part of goqu this package builds queries with.
type Builder interface {
	From(table ...any) *goqu.SelectDataset
	Insert(table any) *goqu.InsertDataset
	Delete(table any) *goqu.DeleteDataset
}

type row struct {
	Key       string    `db:"cache_key"`
	HTML      string    `db:"html"`
	FetchedAt time.Time `db:"fetched_at"`
}

// Store implements cache.Store on Postgres through database/sql and goqu.
type Store struct {
	// DB is the database/sql view of Pool, shared with goose.
	DB      *sql.DB
	Builder Builder
	Pool    *pgxpool.Pool

	ttl time.Duration
	now cache.Clock
}

var _ cache.Store = (*Store)(nil)

// New opens a pgx pool and wraps it with database/sql for goqu and goose.
func New(ctx context.Context, opts Options) (*Store, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s dbname=%s password=%s sslmode=%s",
		opts.Host,
		opts.Port,
		opts.Username,
		opts.Database,
		opts.Password,
		opts.SslMode)
	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("could not parse pgxpool config: %w", err)
	}
	if opts.MaxOpenConnections > 0 {
		cfg.MaxConns = int32(opts.MaxOpenConnections) //nolint: gosec
	}
	if opts.MaxIdleConnections > 0 {
		cfg.MinConns = int32(opts.MaxIdleConnections) //nolint: gosec
	}
	if opts.ConnMaxLifetime > 0 {
		cfg.MaxConnLifetime = opts.ConnMaxLifetime
	}
	if opts.ConnMaxIdleTime > 0 {
		cfg.MaxConnIdleTime = opts.ConnMaxIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create pgx pool: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	s := NewWithDB(sqlDB, opts)
	s.Pool = pool

	return s, nil
}

// NewWithDB builds a Store over an already opened database. Connection fields
// in opts are ignored.
func NewWithDB(db *sql.DB, opts Options) *Store {
	if opts.TTL <= 0 {
		opts.TTL = cache.DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Store{
		DB:      db,
		Builder: goqu.Dialect("postgres").DB(db),
		ttl:     opts.TTL,
		now:     opts.Now,
	}
}

// Migrate applies the embedded goose migrations.
func (s *Store) Migrate(ctx context.Context) error {
	goose.SetBaseFS(root.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("could not set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.DB, "migrations"); err != nil {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// Close closes the pool and its database/sql wrapper.
func (s *Store) Close() error {
	_ = s.DB.Close()
	if s.Pool != nil {
		s.Pool.Close()
	}

	return nil
}

func (s *Store) Get(ctx context.Context, key string) (cache.Entry, bool, error) {
	var r row
	found, err := s.Builder.From(table).
		Select("cache_key", "html", "fetched_at").
		Where(goqu.C("cache_key").Eq(key)).
		ScanStructContext(ctx, &r)
	if err != nil {
		return cache.Entry{}, false, serrors.Wrap(serrors.ErrUnavailable, err, "could not get %s", key)
	}
	if !found {
		return cache.Entry{}, false, nil
	}

	entry := cache.Entry{HTML: r.HTML, Timestamp: r.FetchedAt}
	if cache.IsExpired(entry, s.ttl, s.now()) {
		// only the row that was read, a concurrent Set may have refreshed it
		_, err := s.Builder.Delete(table).
			Where(goqu.C("cache_key").Eq(key), goqu.C("fetched_at").Eq(r.FetchedAt)).
			Executor().ExecContext(ctx)
		if err != nil {
			return cache.Entry{}, false, serrors.Wrap(serrors.ErrUnavailable, err, "could not evict %s", key)
		}

		return cache.Entry{}, false, nil
	}

	return entry, true, nil
}

func (s *Store) Set(ctx context.Context, key string, entry cache.Entry) error {
	_, err := s.Builder.Insert(table).
		Rows(row{Key: key, HTML: entry.HTML, FetchedAt: entry.Timestamp}).
		OnConflict(goqu.DoUpdate("cache_key", goqu.Record{
			"html":       goqu.L("EXCLUDED.html"),
			"fetched_at": goqu.L("EXCLUDED.fetched_at"),
		})).
		Executor().ExecContext(ctx)
	if err != nil {
		return serrors.Wrap(serrors.ErrUnavailable, err, "could not set %s", key)
	}

	return nil
}

func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.Get(ctx, key)

	return ok, err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.Builder.Delete(table).Where(goqu.C("cache_key").Eq(key)).Executor().ExecContext(ctx)
	if err != nil {
		return serrors.Wrap(serrors.ErrUnavailable, err, "could not delete %s", key)
	}

	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.Builder.Delete(table).Executor().ExecContext(ctx); err != nil {
		return serrors.Wrap(serrors.ErrUnavailable, err, "could not clear page cache")
	}

	return nil
}

func (s *Store) ClearExpired(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.ttl)
	res, err := s.Builder.Delete(table).Where(goqu.C("fetched_at").Lt(cutoff)).Executor().ExecContext(ctx)
	if err != nil {
		return 0, serrors.Wrap(serrors.ErrUnavailable, err, "could not clear expired pages")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("could not count removed pages: %w", err)
	}

	return int(n), nil
}
