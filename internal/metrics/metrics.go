// Package metrics exposes Prometheus collectors for the crawl run.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesTotal      prometheus.Counter
	reportsTotal    *prometheus.CounterVec
	geoLookupsTotal *prometheus.CounterVec
	sourcesTotal    prometheus.Counter

	once sync.Once
)

// Report outcomes for the reports counter label.
const (
	OutcomeProcessed = "processed"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// Init initializes the collectors. Safe to call multiple times.
func Init() {
	once.Do(func() {
		pagesTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "chronik_pages_total",
			Help: "Total number of listing pages walked.",
		})
		reportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chronik_reports_total",
			Help: "Total number of report pages handled, labeled by outcome.",
		}, []string{"outcome"})
		geoLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chronik_geo_lookups_total",
			Help: "Total number of geolocation lookups, labeled by result.",
		}, []string{"result"})
		sourcesTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "chronik_sources_total",
			Help: "Total number of source citation rows upserted.",
		})
	})
}

// IncPage counts one walked listing page.
func IncPage() {
	if pagesTotal != nil {
		pagesTotal.Inc()
	}
}

// IncReport counts one handled report with its outcome.
func IncReport(outcome string) {
	if reportsTotal != nil {
		reportsTotal.WithLabelValues(outcome).Inc()
	}
}

// IncGeoLookup counts one geolocation lookup result.
func IncGeoLookup(found bool) {
	if geoLookupsTotal == nil {
		return
	}
	result := "miss"
	if found {
		result = "hit"
	}
	geoLookupsTotal.WithLabelValues(result).Inc()
}

// AddSources counts upserted source rows.
func AddSources(n int) {
	if sourcesTotal != nil {
		sourcesTotal.Add(float64(n))
	}
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
