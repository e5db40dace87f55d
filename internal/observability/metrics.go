package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "road_trip_weather"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Batch orchestration metrics.
	Batches         *prometheus.CounterVec // labels: outcome={accepted,rejected,busy}
	BatchesInFlight prometheus.Gauge
	BatchSize       prometheus.Histogram
	BatchDuration   prometheus.Histogram
	Lookups         *prometheus.CounterVec // labels: outcome={success,failure}

	// Gateway metrics.
	ProviderRequests *prometheus.CounterVec   // labels: provider, outcome={success,error}
	ProviderDuration *prometheus.HistogramVec // labels: provider
	GeocodeCache     *prometheus.CounterVec   // labels: result={hit,miss}

	ActiveSessions  prometheus.Gauge
	SessionsExpired prometheus.Counter
}

// NewMetrics creates all service metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Batch submissions by outcome.",
		}, []string{"outcome"}),
		BatchesInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "batches_in_flight",
			Help:      "Batches currently dispatching.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of eligible entries per accepted batch.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 50},
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Time from batch acceptance to publication of results.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Per-entry lookups by outcome.",
		}, []string{"outcome"}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Weather provider fetches by provider and outcome.",
		}, []string{"provider", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Latency of weather provider fetches.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocode cache lookups by result.",
		}, []string{"result"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory.",
		}),
		SessionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_expired_total",
			Help:      "Sessions evicted after going idle.",
		}),
	}

	reg.MustRegister(
		m.Batches,
		m.BatchesInFlight,
		m.BatchSize,
		m.BatchDuration,
		m.Lookups,
		m.ProviderRequests,
		m.ProviderDuration,
		m.GeocodeCache,
		m.ActiveSessions,
		m.SessionsExpired,
	)

	return m
}

// NewUnregistered returns metrics bound to a throwaway registry. Used by tests
// and by callers that do not expose /metrics.
func NewUnregistered() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
