// Package fallback is the second tier of acquisition. After every field has
// been through its own waterfall, whole-record scrapers are asked for whatever
// is still missing.
package fallback

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"propertydata/pkg/domain"
	"propertydata/pkg/logger"
	"propertydata/pkg/metrics"
	"propertydata/pkg/schema"
	"propertydata/pkg/serrors"
)

// DefaultMaxAttempts caps the scrapers considered per FillMissingFields call
// when Options.MaxAttempts is not positive.
const DefaultMaxAttempts = 3

// PropertyScraper produces a partial record for an address string.
//
//go:generate mockgen -destination=mock/mockfallback.go -package=mockfallback . PropertyScraper
type PropertyScraper interface {
	Name() string
	// SupportedFields lists the fields Scrape can fill.
	SupportedFields() []domain.Field
	Scrape(ctx context.Context, address string) (domain.Record, error)
}

// Options control one FillMissingFields call.
type Options struct {
	// Enabled turns the tier on. A disabled call returns its input.
	Enabled bool
	// MaxAttempts caps how many registry positions are walked, skipped
	// scrapers included, so the same scrapers are in reach on every call.
	// Defaults to DefaultMaxAttempts.
	MaxAttempts int
	// Fields restricts which missing fields are asked for. Empty means all.
	Fields []domain.Field
}

// Registry holds whole-record scrapers in trial order.
type Registry struct {
	mu       sync.RWMutex
	scrapers []PropertyScraper
}

// New returns a registry trying scrapers in the given order.
func New(scrapers ...PropertyScraper) *Registry {
	return &Registry{scrapers: slices.Clone(scrapers)}
}

// Register appends s. Scrapers registered earlier are tried first.
func (r *Registry) Register(s PropertyScraper) {
	r.mu.Lock()
	r.scrapers = append(r.scrapers, s)
	r.mu.Unlock()
}

// Scrapers returns the registered scrapers in trial order.
func (r *Registry) Scrapers() []PropertyScraper {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.scrapers)
}

// FillMissingFields asks registered scrapers for the fields rec is missing
// and returns rec with whatever they supplied merged in.
//
// A scraper is skipped when it supports none of the missing fields and is
// otherwise called once. Only fields that were missing, that the scraper
// returned, and that pass the schema are merged; filled fields are never
// overwritten. Scraper failures are logged and the next scraper tried. The
// loop ends when nothing is missing or after the first opts.MaxAttempts
// scrapers in trial order, whether they were called or skipped. With
// deterministic scrapers a second fill of the result therefore changes
// nothing. Filling a complete record returns it unchanged.
func (r *Registry) FillMissingFields(ctx context.Context,
	rec domain.Record,
	addr domain.Address,
	opts Options) domain.Record {
	if !opts.Enabled {
		return rec
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}

	missing := missingFields(rec, opts.Fields)
	if len(missing) == 0 {
		return rec
	}

	for i, s := range r.Scrapers() {
		if i >= opts.MaxAttempts || len(missing) == 0 {
			break
		}

		wanted := intersect(s.SupportedFields(), missing)
		if len(wanted) == 0 {
			continue
		}

		sctx := logger.WithFields(ctx, zap.String("fallback", s.Name()))
		got, err := scrape(sctx, s, addr.String())
		if err != nil {
			logger.Warn(sctx, "fallback scraper failed", zap.Error(err))

			continue
		}

		for _, f := range wanted {
			v, ok := domain.Get(got, f)
			if !ok {
				continue
			}
			if err := schema.ValidateField(f, v); err != nil {
				logger.Warn(sctx, "fallback value failed schema", zap.Stringer("field", f), zap.Error(err))

				continue
			}
			if err := domain.Set(&rec, f, v); err != nil {
				logger.Warn(sctx, "could not merge fallback value", zap.Stringer("field", f), zap.Error(err))

				continue
			}
			metrics.FallbackFills.WithLabelValues(s.Name(), f.String()).Inc()
			logger.Debug(sctx, "field filled by fallback", zap.Stringer("field", f))
		}

		missing = missingFields(rec, opts.Fields)
	}

	return rec
}

func scrape(ctx context.Context, s PropertyScraper, address string) (rec domain.Record, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = serrors.With(serrors.ErrScrapeFailed, "fallback scraper %s panicked: %v", s.Name(), p)
		}
	}()

	return s.Scrape(ctx, address)
}

func missingFields(rec domain.Record, only []domain.Field) []domain.Field {
	missing := domain.Missing(rec)
	if len(only) == 0 {
		return missing
	}

	return slices.DeleteFunc(missing, func(f domain.Field) bool { return !slices.Contains(only, f) })
}

// intersect returns the members of missing that supported contains, in the
// order of missing.
func intersect(supported, missing []domain.Field) []domain.Field {
	var out []domain.Field
	for _, f := range missing {
		if slices.Contains(supported, f) {
			out = append(out, f)
		}
	}

	return out
}
