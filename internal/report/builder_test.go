package report_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"propertydata/internal/acquire"
	"propertydata/internal/fallback"
	"propertydata/internal/fetch"
	"propertydata/internal/report"
	"propertydata/internal/sources"
	"propertydata/pkg/cache/memory"
	"propertydata/pkg/domain"
	"propertydata/pkg/schema"
	"propertydata/pkg/scraper"
	"propertydata/pkg/serrors"
)

var kew = domain.Address{Line: "6 English Place", Suburb: "Kew", State: "VIC", Postcode: "3101"}

type countingPages struct {
	mu    sync.Mutex
	calls map[domain.Source]int
	pages map[domain.Source]string
}

func (c *countingPages) scrapers() map[domain.Source]scraper.Scraper {
	out := make(map[domain.Source]scraper.Scraper)
	for _, src := range domain.Sources() {
		out[src] = scraper.Func(func(context.Context, domain.Address) (string, error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.calls[src]++
			if html, ok := c.pages[src]; ok {
				return html, nil
			}

			return "<html><body><p>No property details available.</p></body></html>", nil
		})
	}

	return out
}

func (c *countingPages) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, v := range c.calls {
		n += v
	}

	return n
}

func newBuilder(t *testing.T, pages *countingPages, opts report.Options) *report.Builder {
	t.Helper()

	catalog, err := sources.New(fetch.New(memory.New(memory.Options{})), pages.scrapers())
	require.NoError(t, err)
	acquirers, err := catalog.Acquirers()
	require.NoError(t, err)
	fallbacks, err := catalog.FallbackScrapers()
	require.NoError(t, err)

	b, err := report.New(acquirers, fallback.New(fallbacks...), opts)
	require.NoError(t, err)

	return b
}

func TestKewScenario(t *testing.T) {
	pages := &countingPages{
		calls: map[domain.Source]int{},
		pages: map[domain.Source]string{
			domain.SourcePropertyValue: `<html><body><p>Land Size: 650m²</p></body></html>`,
		},
	}
	b := newBuilder(t, pages, report.Options{Fallback: fallback.Options{Enabled: true}})
	ctx := context.Background()

	rec, err := b.Build(ctx, kew)
	require.NoError(t, err)
	require.NoError(t, schema.Validate(rec))
	require.Equal(t, domain.Area{Value: 650, Unit: "m²"}, *rec.LandArea)
	require.Nil(t, rec.YearBuilt)
	for src, n := range pages.calls {
		require.Equal(t, 1, n, "%s fetched once", src)
	}

	scrapes := pages.total()
	again, err := b.Build(ctx, kew)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(rec, again))
	require.Equal(t, scrapes, pages.total(), "a second report within the TTL does not scrape")
}

func TestFallbackFillsGaps(t *testing.T) {
	pages := &countingPages{
		calls: map[domain.Source]int{},
		pages: map[domain.Source]string{
			domain.SourcePropertyValue: `<html><body><p>Land Size: 650m²</p></body></html>`,
			domain.SourceRealEstate: `<html><body><div class="details">
				<p>4 bedrooms, 2 bathrooms, 2 car spaces</p>
				<p>Land: 700 m²</p><p>Built in 1985</p>
			</div></body></html>`,
		},
	}
	b := newBuilder(t, pages, report.Options{Fallback: fallback.Options{Enabled: true}})

	rec, err := b.Build(context.Background(), kew)
	require.NoError(t, err)
	require.Equal(t, 650.0, rec.LandArea.Value, "the field tier wins over the whole-record tier")
	require.Equal(t, 1985, *rec.YearBuilt)
	require.Equal(t, 4, *rec.Bedrooms)
	require.Equal(t, 2, *rec.Bathrooms)
	require.Equal(t, 2, *rec.CarSpaces)

	noFallback, err := newBuilder(t, pages, report.Options{}).
		BuildWith(context.Background(), kew, fallback.Options{})
	require.NoError(t, err)
	require.Nil(t, noFallback.YearBuilt)
	require.NotNil(t, noFallback.LandArea)
}

func TestBadAddress(t *testing.T) {
	b, err := report.New(nil, nil, report.Options{})
	require.NoError(t, err)

	_, err = b.Build(context.Background(), domain.Address{Line: "6 English Place", Suburb: "Kew", State: "XX", Postcode: "3101"})
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

// rawAcquirer hands back a value without any checks.
type rawAcquirer struct {
	field domain.Field
	value any
}

func (a rawAcquirer) Field() domain.Field { return a.field }

func (a rawAcquirer) AcquireValue(context.Context, domain.Address) (any, bool) {
	return a.value, a.value != nil
}

// probe records how many acquisitions run at once.
type probe struct {
	field          domain.Field
	inFlight, peak *atomic.Int32
}

func (p probe) Field() domain.Field { return p.field }

func (p probe) AcquireValue(context.Context, domain.Address) (any, bool) {
	n := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	for {
		seen := p.peak.Load()
		if n <= seen || p.peak.CompareAndSwap(seen, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)

	return nil, false
}

func TestRecordBoundaryViolationNamesField(t *testing.T) {
	b, err := report.New([]acquire.Acquirer{
		rawAcquirer{field: domain.FieldYearBuilt, value: 1985},
		rawAcquirer{field: domain.FieldBedrooms, value: 99},
	}, nil, report.Options{})
	require.NoError(t, err)

	_, err = b.Build(context.Background(), kew)
	require.ErrorIs(t, err, serrors.ErrValidation)
	field, ok := schema.FieldOf(err)
	require.True(t, ok)
	require.Equal(t, domain.FieldBedrooms, field)
}

func TestMistypedValueIsDropped(t *testing.T) {
	b, err := report.New([]acquire.Acquirer{
		rawAcquirer{field: domain.FieldYearBuilt, value: "1985"},
		rawAcquirer{field: domain.FieldZoning, value: "GRZ1"},
	}, nil, report.Options{})
	require.NoError(t, err)

	rec, err := b.Build(context.Background(), kew)
	require.NoError(t, err)
	require.Nil(t, rec.YearBuilt)
	require.Equal(t, "GRZ1", *rec.Zoning)
}

func TestFieldConcurrencyIsBounded(t *testing.T) {
	var inFlight, peak atomic.Int32
	var acquirers []acquire.Acquirer
	for _, f := range domain.Fields() {
		acquirers = append(acquirers, probe{field: f, inFlight: &inFlight, peak: &peak})
	}

	b, err := report.New(acquirers, nil, report.Options{FieldConcurrency: 2})
	require.NoError(t, err)
	_, err = b.Build(context.Background(), kew)
	require.NoError(t, err)
	require.LessOrEqual(t, peak.Load(), int32(2))
	require.Positive(t, peak.Load())
}

func TestReportMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	b, err := report.New([]acquire.Acquirer{
		rawAcquirer{field: domain.FieldZoning, value: "GRZ1"},
	}, nil, report.Options{MeterProvider: provider})
	require.NoError(t, err)

	for range 2 {
		_, err = b.Build(context.Background(), kew)
		require.NoError(t, err)
	}
	_, err = b.Build(context.Background(), domain.Address{})
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "propertydata.reports" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				outcome, _ := dp.Attributes.Value("outcome")
				counts[outcome.AsString()] += dp.Value
			}
		}
	}
	require.Equal(t, map[string]int64{"ok": 2, "bad_request": 1}, counts)
}
