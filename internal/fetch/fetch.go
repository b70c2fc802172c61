// Package fetch puts the page cache in front of the scrapers. Every field of
// every source goes through Retrieve, so a page is downloaded at most once per
// address and source for as long as the cache keeps it.
package fetch

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"propertydata/pkg/cache"
	"propertydata/pkg/domain"
	"propertydata/pkg/logger"
	"propertydata/pkg/metrics"
	"propertydata/pkg/scraper"
	"propertydata/pkg/serrors"
)

var tracer = otel.Tracer("propertydata/internal/fetch") //nolint: gochecknoglobals

// Options configure a Retriever.
type Options struct {
	// Now stamps new cache entries. Defaults to time.Now.
	Now cache.Clock
}

// Retriever returns the HTML of a source's page for an address, from the
// cache when possible and from the source's scraper otherwise.
type Retriever struct {
	store cache.Store
	now   cache.Clock
	// group collapses concurrent misses on one key into one scrape.
	group singleflight.Group
}

// New returns a Retriever backed by store.
func New(store cache.Store) *Retriever {
	return NewWithOptions(store, Options{})
}

// NewWithOptions returns a Retriever backed by store configured by opts.
func NewWithOptions(store cache.Store, opts Options) *Retriever {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Retriever{store: store, now: opts.Now}
}

// Retrieve returns the page for addr on source. A cached, unexpired page is
// returned without calling s. Otherwise s is called once, its page is cached
// and returned.
//
// Scraper failures come back as serrors.ErrScrapeFailed or the more specific
// kind the scraper reported, and are never cached. A cache that cannot be
// read is treated as a miss; a page that cannot be written is still returned.
//
// Concurrent misses on one key share a single scrape. That scrape runs
// detached from the caller's cancellation, so a caller whose ctx ends gets
// serrors.ErrTimeout wrapping ctx.Err() while the others still receive the
// page.
func (r *Retriever) Retrieve(ctx context.Context,
	addr domain.Address,
	source domain.Source,
	s scraper.Scraper) (string, error) {
	key := cache.Key(addr, source)

	ctx, span := tracer.Start(ctx, "Retrieve")
	defer span.End()
	span.SetAttributes(attribute.String("source", source.String()), attribute.String("cache_key", key))

	if html, ok := r.lookup(ctx, key, source); ok {
		metrics.CacheLookups.WithLabelValues(source.String(), metrics.ResultHit).Inc()
		span.SetAttributes(attribute.Bool("cache_hit", true))

		return html, nil
	}
	metrics.CacheLookups.WithLabelValues(source.String(), metrics.ResultMiss).Inc()
	span.SetAttributes(attribute.Bool("cache_hit", false))

	// the flight outlives any one caller; each waiter gives up on its own ctx
	flightCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (any, error) {
		// a flight that finished between our lookup and now has already stored the page
		if html, ok := r.lookup(flightCtx, key, source); ok {
			return html, nil
		}

		return r.scrape(flightCtx, key, addr, source, s)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		err := serrors.Wrap(serrors.ErrTimeout, ctx.Err(), "gave up waiting for %s page", source)
		span.RecordError(err)
		span.SetStatus(codes.Error, "caller gave up")

		return "", err
	case res = <-ch:
	}
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, "scrape failed")

		return "", res.Err
	}

	return res.Val.(string), nil //nolint: forcetypeassert
}

func (r *Retriever) lookup(ctx context.Context, key string, source domain.Source) (string, bool) {
	entry, ok, err := r.store.Get(ctx, key)
	if err != nil {
		logger.Warn(ctx, "could not read page cache, treating as miss", zap.String("key", key), zap.Error(err))
		metrics.CacheLookups.WithLabelValues(source.String(), metrics.ResultError).Inc()

		return "", false
	}

	return entry.HTML, ok
}

func (r *Retriever) scrape(ctx context.Context,
	key string,
	addr domain.Address,
	source domain.Source,
	s scraper.Scraper) (html string, err error) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			err = serrors.With(serrors.ErrScrapeFailed, "%s scraper panicked: %v", source, p)
		}

		metrics.ScrapeDuration.WithLabelValues(source.String()).Observe(time.Since(start).Seconds())
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultFailure
		}
		metrics.Scrapes.WithLabelValues(source.String(), result).Inc()
	}()

	html, err = s.Scrape(ctx, addr)
	if err != nil {
		return "", scrapeError(source, err)
	}
	if html == "" {
		return "", serrors.With(serrors.ErrScrapeFailed, "%s returned an empty page", source)
	}

	if err := r.store.Set(ctx, key, cache.Entry{HTML: html, Timestamp: r.now()}); err != nil {
		logger.Error(ctx, "could not write page cache", zap.String("key", key), zap.Error(err))
	}

	return html, nil
}

// scrapeError keeps a scrape kind the scraper already reported and files
// anything else under ErrScrapeFailed.
func scrapeError(source domain.Source, err error) error {
	for _, k := range []serrors.Kind{serrors.ErrRateLimited, serrors.ErrBlocked, serrors.ErrTimeout} {
		if errors.Is(err, k) {
			return serrors.Wrap(k, err, "could not scrape %s", source)
		}
	}

	return serrors.Wrap(serrors.ErrScrapeFailed, err, "could not scrape %s", source)
}
