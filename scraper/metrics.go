package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the scraper.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	ListingsTotal   *prometheus.CounterVec
	SkippedTotal    *prometheus.CounterVec
	ErrorsTotal     *prometheus.CounterVec
	CheapestPrice   *prometheus.GaugeVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_requests_total",
			Help: "Total HTTP requests issued by the scraper.",
		},
		[]string{"phase"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_request_duration_seconds",
			Help:    "HTTP request latency for scraper requests.",
			Buckets: prometheus.DefBuckets,
		},
	)
	listings := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_listings_total",
			Help: "Listings accepted as candidates, by kind.",
		},
		[]string{"kind"},
	)
	skipped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_listings_skipped_total",
			Help: "Listings skipped because they did not match the page layout, by kind.",
		},
		[]string{"kind"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "Total number of scraper errors by type.",
		},
		[]string{"error_type"},
	)
	cheapest := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scraper_cheapest_price",
			Help: "Price of the cheapest candidate found in the last run, by kind.",
		},
		[]string{"kind"},
	)

	registry.MustRegister(requests, requestDuration, listings, skipped, errorsTotal, cheapest)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		RequestDuration: requestDuration,
		ListingsTotal:   listings,
		SkippedTotal:    skipped,
		ErrorsTotal:     errorsTotal,
		CheapestPrice:   cheapest,
	}
}

// IncRequest increments the requests total counter.
func (m *Metrics) IncRequest(phase string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(phase).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// AddListings adds accepted candidates of a kind.
func (m *Metrics) AddListings(kind string, n int) {
	if m == nil {
		return
	}
	m.ListingsTotal.WithLabelValues(kind).Add(float64(n))
}

// IncSkipped increments the skipped listings counter for a kind.
func (m *Metrics) IncSkipped(kind string) {
	if m == nil {
		return
	}
	m.SkippedTotal.WithLabelValues(kind).Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// SetCheapest records the cheapest price selected for a kind.
func (m *Metrics) SetCheapest(kind string, price int) {
	if m == nil {
		return
	}
	m.CheapestPrice.WithLabelValues(kind).Set(float64(price))
}
