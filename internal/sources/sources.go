// Package sources is the catalog of property data providers: where each
// provider's page lives, how it is fetched, what can be parsed out of it, and
// in which order providers are tried for each field.
package sources

import (
	"context"
	"errors"
	"fmt"

	"propertydata/internal/acquire"
	"propertydata/internal/fallback"
	"propertydata/pkg/domain"
	"propertydata/pkg/parse"
	"propertydata/pkg/scraper"
	"propertydata/pkg/serrors"
)

// PageFetcher turns a URL builder into a Scraper. *httpscraper.Client and
// *browser.Browser implement it.
type PageFetcher interface {
	Scraper(build scraper.URLBuilder) scraper.Scraper
}

// Deps are the page fetchers sources are bound to. Browser may be nil, in
// which case browser-rendered sources are fetched over plain HTTP.
type Deps struct {
	HTTP    PageFetcher
	Browser PageFetcher
}

// Priority is the order sources are tried in each field's waterfall.
func Priority() []domain.Source {
	return []domain.Source{domain.SourcePropertyValue, domain.SourceDomain, domain.SourceCoreLogic}
}

// FallbackOrder is the order whole-record scrapers are registered in.
func FallbackOrder() []domain.Source {
	return []domain.Source{domain.SourceRealEstate, domain.SourcePropertyValue, domain.SourceDomain}
}

// URL returns the property page of addr on source.
func URL(source domain.Source, addr domain.Address) (string, error) {
	switch source {
	case domain.SourcePropertyValue:
		return "https://www.propertyvalue.com.au/property/" + addr.Slug(), nil
	case domain.SourceDomain:
		return "https://www.domain.com.au/property-profile/" + addr.Slug(), nil
	case domain.SourceCoreLogic:
		return "https://www.corelogic.com.au/property-report/" + addr.Slug(), nil
	case domain.SourceRealEstate:
		return "https://www.realestate.com.au/property/" + addr.Slug(), nil
	default:
		return "", serrors.With(serrors.ErrBadRequest, "unknown source %q", source)
	}
}

// ScraperFor binds source to the fetcher that can read its pages.
func ScraperFor(source domain.Source, deps Deps) (scraper.Scraper, error) {
	if deps.HTTP == nil {
		return nil, serrors.With(serrors.ErrInternal, "no HTTP fetcher configured")
	}

	build := func(addr domain.Address) string {
		u, _ := URL(source, addr)

		return u
	}

	switch source {
	case domain.SourcePropertyValue, domain.SourceDomain, domain.SourceCoreLogic:
		return deps.HTTP.Scraper(build), nil
	case domain.SourceRealEstate:
		// listing details are rendered client side
		if deps.Browser != nil {
			return deps.Browser.Scraper(build), nil
		}

		return deps.HTTP.Scraper(build), nil
	default:
		return nil, serrors.With(serrors.ErrBadRequest, "unknown source %q", source)
	}
}

// Scrapers binds every source with ScraperFor.
func Scrapers(deps Deps) (map[domain.Source]scraper.Scraper, error) {
	out := make(map[domain.Source]scraper.Scraper, len(domain.Sources()))
	for _, src := range domain.Sources() {
		s, err := ScraperFor(src, deps)
		if err != nil {
			return nil, fmt.Errorf("could not bind %s: %w", src, err)
		}
		out[src] = s
	}

	return out, nil
}

// Catalog builds the acquisition tiers over one retriever.
type Catalog struct {
	retriever acquire.Retriever
	scrapers  map[domain.Source]scraper.Scraper
}

// New returns a catalog fetching pages through retriever with the given
// per-source scrapers. Every source needs a scraper.
func New(retriever acquire.Retriever, scrapers map[domain.Source]scraper.Scraper) (*Catalog, error) {
	for _, src := range domain.Sources() {
		if scrapers[src] == nil {
			return nil, serrors.With(serrors.ErrInternal, "no scraper for %s", src)
		}
	}

	return &Catalog{retriever: retriever, scrapers: scrapers}, nil
}

// Acquirers returns one waterfall per record field, in field order.
func (c *Catalog) Acquirers() ([]acquire.Acquirer, error) {
	var (
		out  []acquire.Acquirer
		errs []error
	)
	add := func(a acquire.Acquirer, err error) {
		if err != nil {
			errs = append(errs, err)

			return
		}
		out = append(out, a)
	}

	add(waterfall(c, domain.FieldYearBuilt, func(p profile) *parse.Config[int] { return p.YearBuilt }))
	add(waterfall(c, domain.FieldLandArea, func(p profile) *parse.Config[domain.Area] { return p.LandArea }))
	add(waterfall(c, domain.FieldFloorArea, func(p profile) *parse.Config[domain.Area] { return p.FloorArea }))
	add(waterfall(c, domain.FieldBedrooms, func(p profile) *parse.Config[int] { return p.Bedrooms }))
	add(waterfall(c, domain.FieldBathrooms, func(p profile) *parse.Config[int] { return p.Bathrooms }))
	add(waterfall(c, domain.FieldCarSpaces, func(p profile) *parse.Config[int] { return p.CarSpaces }))
	add(waterfall(c, domain.FieldPropertyType, func(p profile) *parse.Config[string] { return p.PropertyType }))
	add(waterfall(c, domain.FieldEstimatedValue,
		func(p profile) *parse.Config[domain.ValueEstimate] { return p.EstimatedValue }))
	add(waterfall(c, domain.FieldLastSale, func(p profile) *parse.Config[domain.Sale] { return p.LastSale }))
	add(waterfall(c, domain.FieldNearbySchools,
		func(p profile) *parse.Config[[]domain.School] { return p.NearbySchools }))
	add(waterfall(c, domain.FieldZoning, func(p profile) *parse.Config[string] { return p.Zoning }))
	add(waterfall(c, domain.FieldCouncilArea, func(p profile) *parse.Config[string] { return p.CouncilArea }))

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return out, nil
}

// FallbackScrapers returns the whole-record scrapers in FallbackOrder.
func (c *Catalog) FallbackScrapers() ([]fallback.PropertyScraper, error) {
	var out []fallback.PropertyScraper
	for _, src := range FallbackOrder() {
		p, err := fallbackProfileFor(src)
		if err != nil {
			return nil, err
		}
		out = append(out, fallback.NewPageScraper(src, c.scrapers[src], c.retriever, p.configs()...))
	}

	return out, nil
}

// Retrieve fetches the page of addr on source through the catalog's
// retriever, mostly for inspecting what a source serves.
func (c *Catalog) Retrieve(ctx context.Context, source domain.Source, addr domain.Address) (string, error) {
	s, ok := c.scrapers[source]
	if !ok {
		return "", serrors.With(serrors.ErrBadRequest, "unknown source %q", source)
	}

	return c.retriever.Retrieve(ctx, addr, source, s)
}

func waterfall[T any](c *Catalog, f domain.Field, pick func(profile) *parse.Config[T]) (acquire.Acquirer, error) {
	var fetchers []acquire.FieldFetcher[T]
	for _, src := range Priority() {
		p, err := profileFor(src)
		if err != nil {
			return nil, err
		}
		cfg := pick(p)
		if cfg == nil {
			continue
		}

		fetcher, err := acquire.NewFetcher(f, src, c.scrapers[src], *cfg, c.retriever)
		if err != nil {
			return nil, fmt.Errorf("could not bind %s on %s: %w", f, src, err)
		}
		fetchers = append(fetchers, fetcher)
	}

	return acquire.NewFieldAcquirer(f, fetchers...), nil
}
