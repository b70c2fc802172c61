package main

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"propertydata/internal/config"
	"propertydata/internal/fallback"
	"propertydata/internal/fetch"
	"propertydata/internal/report"
	"propertydata/internal/sources"
	"propertydata/pkg/cache"
	"propertydata/pkg/cache/memory"
	"propertydata/pkg/cache/pgcache"
	"propertydata/pkg/cache/rediscache"
	"propertydata/pkg/logger"
	"propertydata/pkg/scraper/browser"
	"propertydata/pkg/scraper/httpscraper"
)

// getPostgres creates the Postgres page cache using configuration values and
// returns it along with a cleanup function to close the connection pool.
func getPostgres(ctx context.Context, cfg *config.Config) (*pgcache.Store, func()) {
	store, err := pgcache.New(ctx, pgcache.Options{
		Username:           cfg.Database.Username,
		Password:           cfg.Database.Password,
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		Database:           cfg.Database.DatabaseName,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime:    cfg.Database.ConnMaxIdleTime,
		MaxOpenConnections: cfg.Database.MaxOpenConnections,
		MaxIdleConnections: cfg.Database.MaxIdleConnections,
		SslMode:            cfg.Database.SslMode,
		TTL:                cfg.Cache.TTL,
	})
	if err != nil {
		logger.Fatal(ctx, "could not create postgres cache", zap.Error(err))
	}

	return store, func() {
		logger.Info(ctx, "closing postgres client...")
		if err = store.Close(); err != nil {
			logger.Warn(ctx, "could not close postgres connection", zap.Error(err))
		}
	}
}

// getRedis creates the Redis page cache and checks the server is reachable.
func getRedis(ctx context.Context, cfg *config.Config) (*rediscache.Store, func()) {
	store := rediscache.New(rediscache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   cfg.Redis.Prefix,
		TTL:      cfg.Cache.TTL,
	})
	if err := store.Ping(ctx); err != nil {
		logger.Fatal(ctx, "could not reach redis", zap.Error(err))
	}

	return store, func() {
		logger.Info(ctx, "closing redis client...")
		if err := store.Close(); err != nil {
			logger.Warn(ctx, "could not close redis connection", zap.Error(err))
		}
	}
}

// getStore returns the configured page cache backend.
func getStore(ctx context.Context, cfg *config.Config) (cache.Store, func()) {
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		return getRedis(ctx, cfg)
	case config.CachePostgres:
		return getPostgres(ctx, cfg)
	default:
		if cfg.Cache.TTL == cache.DefaultTTL {
			return memory.Default(), func() {}
		}

		return memory.New(memory.Options{TTL: cfg.Cache.TTL}), func() {}
	}
}

// getFetchers builds the HTTP client and, when enabled, the headless browser.
func getFetchers(ctx context.Context, cfg *config.Config) (sources.Deps, func()) {
	deps := sources.Deps{
		HTTP: httpscraper.New(httpscraper.Options{
			UserAgent:        cfg.Scrapers.UserAgent,
			Timeout:          cfg.Scrapers.HTTPTimeout,
			BypassCloudflare: cfg.Scrapers.BypassCloudflare,
			Debug:            cfg.Scrapers.Debug,
		}),
	}
	if !cfg.Scrapers.Browser.Enabled {
		return deps, func() {}
	}

	b := browser.New(browser.Options{
		UserAgent: cfg.Scrapers.UserAgent,
		Timeout:   cfg.Scrapers.Browser.Timeout,
		ExecPath:  cfg.Scrapers.Browser.ExecPath,
	})
	deps.Browser = b

	return deps, func() {
		logger.Info(ctx, "closing browser...")
		b.Close()
	}
}

// getCatalog binds every source to its fetcher behind the shared page cache.
func getCatalog(ctx context.Context, cfg *config.Config, store cache.Store) (*sources.Catalog, func()) {
	deps, closeFetchers := getFetchers(ctx, cfg)

	scrapers, err := sources.Scrapers(deps)
	if err != nil {
		logger.Fatal(ctx, "could not bind sources", zap.Error(err))
	}
	catalog, err := sources.New(fetch.New(store), scrapers)
	if err != nil {
		logger.Fatal(ctx, "could not create source catalog", zap.Error(err))
	}

	return catalog, closeFetchers
}

// getBuilder assembles the report builder. A nil meter provider uses the
// global one.
func getBuilder(ctx context.Context, cfg *config.Config, catalog *sources.Catalog, mp metric.MeterProvider) *report.Builder {
	acquirers, err := catalog.Acquirers()
	if err != nil {
		logger.Fatal(ctx, "could not create field acquirers", zap.Error(err))
	}
	fallbacks, err := catalog.FallbackScrapers()
	if err != nil {
		logger.Fatal(ctx, "could not create fallback scrapers", zap.Error(err))
	}

	opts := report.NewOptions(cfg)
	opts.MeterProvider = mp

	b, err := report.New(acquirers, fallback.New(fallbacks...), opts)
	if err != nil {
		logger.Fatal(ctx, "could not create report builder", zap.Error(err))
	}

	return b
}
