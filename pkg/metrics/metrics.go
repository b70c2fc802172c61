// Package metrics holds the Prometheus collectors shared by the engine. They
// register with the default registry, which the API serves at its metrics path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// Label values.
const (
	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultError   = "error"
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultFound   = "found"
	ResultAbsent  = "absent"
)

//nolint: gochecknoglobals
var (
	// CacheLookups counts page cache lookups by source and result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "propertydata",
		Name:      "cache_lookups_total",
		Help:      "Page cache lookups by source and result.",
	}, []string{"source", "result"})

	// Scrapes counts scraper invocations by source and result (success, failure).
	Scrapes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "propertydata",
		Name:      "scrapes_total",
		Help:      "Scraper invocations by source and result.",
	}, []string{"source", "result"})

	// ScrapeDuration observes how long scraper invocations take.
	ScrapeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "propertydata",
		Name:      "scrape_duration_seconds",
		Help:      "Duration of scraper invocations.",
		Buckets:   append(DefaultBuckets, 30, 60), //nolint: mnd
	}, []string{"source"})

	// FieldOutcomes counts field acquisitions by field and result (found, absent).
	FieldOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "propertydata",
		Name:      "field_outcomes_total",
		Help:      "Field acquisitions by field and result.",
	}, []string{"field", "result"})

	// FallbackFills counts fields filled by whole-record scrapers.
	FallbackFills = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "propertydata",
		Name:      "fallback_fills_total",
		Help:      "Fields filled by whole-record scrapers.",
	}, []string{"scraper", "field"})
)
