package acquire_test

import (
	"context"
	"errors"
	"regexp"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"propertydata/internal/acquire"
	"propertydata/internal/fetch"
	"propertydata/pkg/cache/memory"
	"propertydata/pkg/domain"
	"propertydata/pkg/parse"
	"propertydata/pkg/scraper"
	mockscraper "propertydata/pkg/scraper/mock"
	"propertydata/pkg/serrors"
)

var kew = domain.Address{Line: "6 English Place", Suburb: "Kew", State: "VIC", Postcode: "3101"}

var landArea = parse.Config[domain.Area]{
	Strategies: []parse.Strategy{parse.Labeled("label cell", "Land Size")},
	Extract:    parse.Area,
	Patterns:   []*regexp.Regexp{regexp.MustCompile(`(?i)land size:?\s*([\d.,]+\s*m²)`)},
}

var yearBuilt = parse.Config[int]{
	Strategies: []parse.Strategy{parse.Labeled("label cell", "Year Built")},
	Extract:    parse.Year,
}

func page(html string) scraper.Scraper {
	return scraper.Func(func(context.Context, domain.Address) (string, error) { return html, nil })
}

func TestNewFetcherChecksValueType(t *testing.T) {
	r := fetch.New(memory.New(memory.Options{}))

	_, err := acquire.NewFetcher(domain.FieldLandArea, domain.SourcePropertyValue, page(""), landArea, r)
	require.NoError(t, err)

	_, err = acquire.NewFetcher(domain.FieldYearBuilt, domain.SourcePropertyValue, page(""), landArea, r)
	require.ErrorIs(t, err, serrors.ErrInternal)

	_, err = acquire.NewFetcher(domain.Field("roofColour"), domain.SourcePropertyValue, page(""), landArea, r)
	require.ErrorIs(t, err, serrors.ErrBadRequest)

	_, err = acquire.NewFetcher(domain.FieldLandArea, domain.Source("zillow.com"), page(""), landArea, r)
	require.ErrorIs(t, err, serrors.ErrBadRequest)

	require.Panics(t, func() {
		acquire.MustFetcher(domain.FieldLandArea, domain.SourcePropertyValue, page(""), yearBuilt, r)
	})
}

func TestFetcherOutcomes(t *testing.T) {
	r := fetch.New(memory.New(memory.Options{}))
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		f := acquire.MustFetcher(domain.FieldLandArea, domain.SourcePropertyValue,
			page(`<p>Land Size: 650m²</p>`), landArea, r)
		v, ok := f.Fetch(ctx, kew).Value()
		require.True(t, ok)
		require.Equal(t, domain.Area{Value: 650, Unit: "m²"}, v)
	})

	t.Run("parse miss is not found", func(t *testing.T) {
		f := acquire.MustFetcher(domain.FieldYearBuilt, domain.SourceDomain,
			page(`<p>No details</p>`), yearBuilt, r)
		res := f.Fetch(ctx, kew)
		require.True(t, res.IsNotFound())
		require.NoError(t, res.Err())
	})

	t.Run("schema violation is not found", func(t *testing.T) {
		f := acquire.MustFetcher(domain.FieldYearBuilt, domain.SourceCoreLogic,
			page(`<table><tr><td>Year Built</td><td>1700</td></tr></table>`), yearBuilt, r)
		require.True(t, f.Fetch(ctx, kew).IsNotFound())
	})

	t.Run("retrieve failure is failed", func(t *testing.T) {
		broken := scraper.Func(func(context.Context, domain.Address) (string, error) {
			return "", serrors.With(serrors.ErrBlocked, "captcha")
		})
		f := acquire.MustFetcher(domain.FieldYearBuilt, domain.SourceRealEstate, broken, yearBuilt, r)
		res := f.Fetch(ctx, kew)
		require.False(t, res.IsFound())
		require.False(t, res.IsNotFound())
		require.ErrorIs(t, res.Err(), serrors.ErrBlocked)
	})
}

func TestFetchersShareOnePage(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := mockscraper.NewMockScraper(ctrl)
	s.EXPECT().Scrape(gomock.Any(), kew).
		Return(`<table><tr><td>Year Built</td><td>1985</td></tr></table><p>Land Size: 650m²</p>`, nil).
		Times(1)

	r := fetch.New(memory.New(memory.Options{}))
	ctx := context.Background()

	year, ok := acquire.MustFetcher(domain.FieldYearBuilt, domain.SourcePropertyValue, s, yearBuilt, r).
		Fetch(ctx, kew).Value()
	require.True(t, ok)
	require.Equal(t, 1985, year)

	area, ok := acquire.MustFetcher(domain.FieldLandArea, domain.SourcePropertyValue, s, landArea, r).
		Fetch(ctx, kew).Value()
	require.True(t, ok)
	require.Equal(t, 650.0, area.Value)
}

func TestAcquirerStopsAtFirstFound(t *testing.T) {
	var later atomic.Int32
	a := acquire.NewFieldAcquirer[int](domain.FieldBedrooms,
		acquire.FetchFunc[int](func(context.Context, domain.Address) acquire.Result[int] {
			return acquire.Found(3)
		}),
		acquire.FetchFunc[int](func(context.Context, domain.Address) acquire.Result[int] {
			later.Add(1)

			return acquire.Found(4)
		}),
	)

	v, ok := a.Acquire(context.Background(), kew)
	require.True(t, ok)
	require.Equal(t, 3, v)
	require.Zero(t, later.Load())
}

func TestAcquirerContinuesPastMissesAndFailures(t *testing.T) {
	var order []string
	step := func(name string, res acquire.Result[int]) acquire.FieldFetcher[int] {
		return acquire.FetchFunc[int](func(context.Context, domain.Address) acquire.Result[int] {
			order = append(order, name)

			return res
		})
	}

	a := acquire.NewFieldAcquirer(domain.FieldCarSpaces,
		step("failed", acquire.Failed[int](errors.New("timeout"))),
		step("missing", acquire.NotFound[int]()),
		step("found", acquire.Found(2)),
		step("unused", acquire.Found(9)),
	)

	v, ok := a.AcquireValue(context.Background(), kew)
	require.True(t, ok)
	require.Equal(t, 2, v)
	require.Equal(t, []string{"failed", "missing", "found"}, order)
}

func TestAcquirerAbsent(t *testing.T) {
	a := acquire.NewFieldAcquirer[string](domain.FieldZoning,
		acquire.FetchFunc[string](func(context.Context, domain.Address) acquire.Result[string] {
			return acquire.NotFound[string]()
		}),
	)
	_, ok := a.Acquire(context.Background(), kew)
	require.False(t, ok)

	v, ok := acquire.NewFieldAcquirer[string](domain.FieldZoning).AcquireValue(context.Background(), kew)
	require.False(t, ok)
	require.Nil(t, v)
}

func TestAcquirerRevalidatesFinalValue(t *testing.T) {
	a := acquire.NewFieldAcquirer[int](domain.FieldBedrooms,
		acquire.FetchFunc[int](func(context.Context, domain.Address) acquire.Result[int] {
			return acquire.Found(-1)
		}),
	)

	_, ok := a.Acquire(context.Background(), kew)
	require.False(t, ok)
}

func TestWaterfallAcrossSources(t *testing.T) {
	r := fetch.New(memory.New(memory.Options{}))
	down := scraper.Func(func(context.Context, domain.Address) (string, error) {
		return "", serrors.With(serrors.ErrRateLimited, "429")
	})

	a := acquire.NewFieldAcquirer[domain.Area](domain.FieldLandArea,
		acquire.MustFetcher(domain.FieldLandArea, domain.SourcePropertyValue, down, landArea, r),
		acquire.MustFetcher(domain.FieldLandArea, domain.SourceDomain, page(`<p>nothing here</p>`), landArea, r),
		acquire.MustFetcher(domain.FieldLandArea, domain.SourceCoreLogic,
			page(`<table><tr><td>Land Size</td><td>612 m²</td></tr></table>`), landArea, r),
	)

	v, ok := a.Acquire(context.Background(), kew)
	require.True(t, ok)
	require.Equal(t, domain.Area{Value: 612, Unit: "m²"}, v)
}
