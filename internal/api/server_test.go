package api_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"propertydata/internal/acquire"
	"propertydata/internal/api"
	"propertydata/internal/api/handler/v1handler"
	"propertydata/internal/report"
	"propertydata/pkg/cache/memory"
	"propertydata/pkg/domain"
	"propertydata/pkg/serrors"
)

type zoning struct{}

func (zoning) Field() domain.Field { return domain.FieldZoning }

func (zoning) AcquireValue(context.Context, domain.Address) (any, bool) { return "GRZ1", true }

func newTestServer(t *testing.T, opts api.Options) *httptest.Server {
	t.Helper()

	mp, err := api.NewMeterProvider(prometheus.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	b, err := report.New([]acquire.Acquirer{zoning{}}, nil, report.Options{MeterProvider: mp})
	require.NoError(t, err)

	srv, err := api.NewServer(api.Deps{Deps: v1handler.Deps{
		Reports: b,
		Cache:   memory.New(memory.Options{}),
	}}, opts)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	return ts
}

func get(t *testing.T, u string) (*http.Response, string) {
	t.Helper()

	res, err := http.Get(u) //nolint: noctx
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return res, string(body)
}

func TestServer(t *testing.T) {
	ts := newTestServer(t, api.Options{MetricsPath: "/metrics", RequestTimeout: time.Minute})

	res, body := get(t, ts.URL+"/v1/report?address="+url.QueryEscape("6 English Place, Kew VIC 3101"))
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NotEmpty(t, res.Header.Get("X-Request-Id"))
	require.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
	require.JSONEq(t, `{
		"address": "6 English Place, Kew VIC 3101",
		"record": {
			"yearBuilt": null, "landArea": null, "floorArea": null,
			"bedrooms": null, "bathrooms": null, "carSpaces": null,
			"propertyType": null, "estimatedValue": null, "lastSale": null,
			"nearbySchools": null, "zoning": "GRZ1", "councilArea": null
		}
	}`, body)

	res, body = get(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, body, "go_goroutines")

	res, _ = get(t, ts.URL+"/debug/pprof/")
	require.Equal(t, http.StatusNotFound, res.StatusCode, "pprof is off by default")
}

func TestServer_Pprof(t *testing.T) {
	ts := newTestServer(t, api.Options{Pprof: true})

	res, _ := get(t, ts.URL+"/debug/pprof/")
	require.Equal(t, http.StatusOK, res.StatusCode)
}

func TestNewServer_NeedsDeps(t *testing.T) {
	_, err := api.NewServer(api.Deps{}, api.Options{})
	require.ErrorIs(t, err, serrors.ErrInternal)
}
