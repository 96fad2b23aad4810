package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	FetchDuration prometheus.Histogram
	FetchErrors   prometheus.Counter
	Documents     *prometheus.CounterVec
	Records       prometheus.Gauge
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
	Requests      *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered, which tests use.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ticketdash_fetch_duration_seconds",
			Help:    "Time spent loading a folder from the remote store.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticketdash_fetch_errors_total",
			Help: "Folder loads that failed before producing a batch.",
		}),
		Documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ticketdash_documents_total",
			Help: "Data documents ingested, by outcome.",
		}, []string{"status"}),
		Records: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ticketdash_records",
			Help: "Records in the most recent batch.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticketdash_cache_hits_total",
			Help: "Batch cache lookups served from memory.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticketdash_cache_misses_total",
			Help: "Batch cache lookups that reloaded the folder.",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ticketdash_http_requests_total",
			Help: "HTTP requests served, by route and status.",
		}, []string{"method", "route", "status"}),
	}

	if reg != nil {
		reg.MustRegister(m.FetchDuration, m.FetchErrors, m.Documents, m.Records, m.CacheHits, m.CacheMisses, m.Requests)
	}
	return m
}
