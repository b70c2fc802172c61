package fallback_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"propertydata/internal/fallback"
	"propertydata/internal/fetch"
	"propertydata/pkg/cache/memory"
	"propertydata/pkg/domain"
	"propertydata/pkg/parse"
	"propertydata/pkg/scraper"
	"propertydata/pkg/serrors"
)

const listing = `<html><body>
<dl>
  <dt>Zoning</dt><dd>GRZ1</dd>
  <dt>Council</dt><dd>Boroondara</dd>
  <dt>Type</dt><dd>Castle</dd>
</dl>
</body></html>`

func listingConfigs() []parse.FieldConfig {
	return []parse.FieldConfig{
		parse.Field(domain.FieldZoning, parse.Config[string]{
			Strategies: []parse.Strategy{parse.Labeled("label", "Zoning")},
			Extract:    parse.Text,
		}),
		parse.Field(domain.FieldCouncilArea, parse.Config[string]{
			Strategies: []parse.Strategy{parse.Labeled("label", "Council")},
			Extract:    parse.Text,
		}),
		parse.Field(domain.FieldPropertyType, parse.Config[string]{
			Strategies: []parse.Strategy{parse.Labeled("label", "Type")},
			Extract:    parse.Text,
		}),
	}
}

func TestPageScraper(t *testing.T) {
	var calls atomic.Int32
	s := scraper.Func(func(_ context.Context, addr domain.Address) (string, error) {
		calls.Add(1)
		require.Equal(t, kew, addr)

		return listing, nil
	})
	r := fetch.New(memory.New(memory.Options{}))
	p := fallback.NewPageScraper(domain.SourceRealEstate, s, r, listingConfigs()...)

	require.Equal(t, "page(realestate.com)", p.Name())
	require.Equal(t, []domain.Field{domain.FieldZoning, domain.FieldCouncilArea, domain.FieldPropertyType},
		p.SupportedFields())

	rec, err := p.Scrape(context.Background(), kew.String())
	require.NoError(t, err)
	require.Equal(t, "GRZ1", *rec.Zoning)
	require.Equal(t, "Boroondara", *rec.CouncilArea)
	require.Nil(t, rec.PropertyType, "a value breaking the schema is dropped")

	_, err = p.Scrape(context.Background(), kew.String())
	require.NoError(t, err)
	require.EqualValues(t, 1, calls.Load(), "the page is cached")
}

func TestPageScraperErrors(t *testing.T) {
	r := fetch.New(memory.New(memory.Options{}))

	p := fallback.NewPageScraper(domain.SourceDomain, scraper.Func(
		func(context.Context, domain.Address) (string, error) { return listing, nil }), r, listingConfigs()...)
	_, err := p.Scrape(context.Background(), "somewhere")
	require.ErrorIs(t, err, serrors.ErrBadRequest)

	p = fallback.NewPageScraper(domain.SourceDomain, scraper.Func(
		func(context.Context, domain.Address) (string, error) {
			return "", serrors.With(serrors.ErrBlocked, "bot wall")
		}), r, listingConfigs()...)
	_, err = p.Scrape(context.Background(), kew.String())
	require.ErrorIs(t, err, serrors.ErrBlocked)
}

func TestPageScraperFillsRegistry(t *testing.T) {
	r := fetch.New(memory.New(memory.Options{}))
	p := fallback.NewPageScraper(domain.SourceRealEstate, scraper.Func(
		func(context.Context, domain.Address) (string, error) { return listing, nil }), r, listingConfigs()...)

	out := fallback.New(p).FillMissingFields(context.Background(), domain.Record{Zoning: domain.Ptr("NRZ1")}, kew, enabled)
	require.Equal(t, "NRZ1", *out.Zoning)
	require.Equal(t, "Boroondara", *out.CouncilArea)
	require.Nil(t, out.PropertyType)
}
