package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "temperature_wave"

// Metrics holds the Prometheus counters, histograms, and gauges for the wave service.
type Metrics struct {
	SnapshotsComputed prometheus.Counter
	ReadingsPublished *prometheus.CounterVec // labels: sink={kafka,mqtt}
	PublishErrors     *prometheus.CounterVec // labels: sink={kafka,mqtt}
	PipelineRunning   prometheus.Gauge

	CycleDuration prometheus.Histogram

	// Wave state.
	CurrentTemperature prometheus.Gauge
	Rising             prometheus.Gauge
	SolarNoonHours     *prometheus.GaugeVec   // labels: source={override,sun,wall_clock}
	ConfigUpdates      *prometheus.CounterVec // labels: outcome={applied,rejected}

	// Sun lookups against the host platform.
	SunRequests    *prometheus.CounterVec // labels: outcome={success,error}
	SunCache       *prometheus.CounterVec // labels: result={hit,miss}
	SunAPIDuration prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewMetricsForTesting()

	prometheus.MustRegister(
		m.SnapshotsComputed,
		m.ReadingsPublished,
		m.PublishErrors,
		m.PipelineRunning,
		m.CycleDuration,
		m.CurrentTemperature,
		m.Rising,
		m.SolarNoonHours,
		m.ConfigUpdates,
		m.SunRequests,
		m.SunCache,
		m.SunAPIDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		SnapshotsComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_computed_total",
			Help:      "Total wave snapshots evaluated.",
		}),
		ReadingsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_published_total",
			Help:      "Readings delivered by sink.",
		}, []string{"sink"}),
		PublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed publish attempts by sink.",
		}, []string{"sink"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete sample-render-publish cycle.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		CurrentTemperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_temperature",
			Help:      "Most recent continuous wave value in display units.",
		}),
		Rising: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rising",
			Help:      "1 while the wave is rising, 0 while falling.",
		}),
		SolarNoonHours: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "solar_noon_hours",
			Help:      "Resolved solar noon as fractional hours since local midnight.",
		}, []string{"source"}),
		ConfigUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_updates_total",
			Help:      "Runtime wave config replacements by outcome.",
		}, []string{"outcome"}),
		SunRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sun_requests_total",
			Help:      "Sun state requests to the host platform by outcome.",
		}, []string{"outcome"}),
		SunCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sun_cache_total",
			Help:      "Sun state cache lookups by result.",
		}, []string{"result"}),
		SunAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sun_api_duration_seconds",
			Help:      "Host platform sun state request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}
