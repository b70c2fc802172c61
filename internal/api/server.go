// Package api configures the HTTP server exposing property reports, the page
// cache hooks, metrics and profiling.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"propertydata/internal/api/handler/v1handler"
	"propertydata/internal/config"
	"propertydata/pkg/controller"
	"propertydata/pkg/serrors"
)

const pprofPrefix = "/debug/pprof/"

// Options holds configuration for the HTTP server.
// Zero durations fall back to the net/http defaults, except RequestTimeout
// where zero disables the per-request timeout.
type Options struct {
	// Addr is the TCP address the server listens on, e.g. ":8080".
	Addr string
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
	// RequestTimeout is applied to every request via http.TimeoutHandler.
	RequestTimeout time.Duration
	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing the request header's keys and values, including the request line.
	MaxHeaderBytes int
	// MetricsPath is the HTTP path at which Prometheus metrics are served.
	MetricsPath string
	// Pprof mounts the runtime profiles under /debug/pprof/.
	Pprof bool
}

// NewOptions constructs an Options value from the provided application configuration.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Addr:              cfg.HTTP.Addr,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MetricsPath:       cfg.HTTP.MetricsPath,
		Pprof:             cfg.HTTP.Pprof,
	}
}

// Deps are the services behind the routes.
type Deps struct {
	v1handler.Deps
}

// NewMeterProvider returns an OpenTelemetry meter provider whose instruments
// are exported through reg, so they are served next to the Prometheus
// collectors at the metrics path.
func NewMeterProvider(reg prometheus.Registerer) (*sdkmetric.MeterProvider, error) {
	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)), nil
}

// NewServer wires up and returns a configured *http.Server. It serves:
// - Prometheus metrics at MetricsPath
// - the v1 API under /v1/
// - pprof under /debug/pprof/ when enabled
// and wraps everything with the CORS and logging middlewares and the request timeout.
func NewServer(deps Deps, opts Options) (*http.Server, error) {
	if deps.Reports == nil || deps.Cache == nil {
		return nil, serrors.With(serrors.ErrInternal, "api needs a report builder and a cache")
	}

	mux := http.NewServeMux()

	// prometheus metrics server
	if opts.MetricsPath != "" {
		mux.Handle(opts.MetricsPath, promhttp.Handler())
	}

	// v1 api
	mux.Handle("/v1/", v1handler.New(deps.Deps).Routes())

	// pprof
	if opts.Pprof {
		mux.Handle(pprofPrefix, controller.Pprof(pprofPrefix))
	}

	handler := controller.WithCORS(mux)
	if opts.RequestTimeout > 0 {
		handler = http.TimeoutHandler(handler, opts.RequestTimeout, `{"code":"TIMEOUT","error":"request timed out"}`)
	}
	handler = controller.WithLogger(handler)

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
	}, nil
}
