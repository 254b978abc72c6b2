package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the assessment service.
type Metrics struct {
	// Rainfall source chain.
	RainfallAttempts *prometheus.CounterVec   // labels: source, outcome={success,error,invalid}
	RainfallDuration *prometheus.HistogramVec // labels: source

	// Groundwater and aquifer resolution.
	GroundwaterLookups *prometheus.CounterVec // labels: method={nearest,default}
	AquiferLookups     *prometheus.CounterVec // labels: result={match,none}
	ReferenceSamples   prometheus.Gauge

	// Assessments.
	Assessments     *prometheus.CounterVec // labels: outcome={success,invalid,failed}
	QualityWarnings *prometheus.CounterVec // labels: warning

	// Record publishing.
	RecordsPublished prometheus.Counter
	RecordsDropped   prometheus.Counter
	PublishErrors    prometheus.Counter
	PublisherRunning prometheus.Gauge
	BatchSize        prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates all service metrics and registers them with reg.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	m := newMetrics(true)
	reg.MustRegister(
		m.RainfallAttempts,
		m.RainfallDuration,
		m.GroundwaterLookups,
		m.AquiferLookups,
		m.ReferenceSamples,
		m.Assessments,
		m.QualityWarnings,
		m.RecordsPublished,
		m.RecordsDropped,
		m.PublishErrors,
		m.PublisherRunning,
		m.BatchSize,
	)
	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		RainfallAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rtrwh",
			Name:      "rainfall_source_attempts_total",
			Help:      help("Rainfall source attempts by source and outcome."),
		}, []string{"source", "outcome"}),
		RainfallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rtrwh",
			Name:      "rainfall_source_duration_seconds",
			Help:      help("Rainfall source request duration in seconds."),
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"source"}),
		GroundwaterLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rtrwh",
			Name:      "groundwater_lookups_total",
			Help:      help("Groundwater resolutions by method."),
		}, []string{"method"}),
		AquiferLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rtrwh",
			Name:      "aquifer_lookups_total",
			Help:      help("Aquifer polygon lookups by result."),
		}, []string{"result"}),
		ReferenceSamples: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rtrwh",
			Name:      "reference_groundwater_samples",
			Help:      help("Groundwater samples loaded from reference data."),
		}),
		Assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rtrwh",
			Name:      "assessments_total",
			Help:      help("Assessments by outcome."),
		}, []string{"outcome"}),
		QualityWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rtrwh",
			Name:      "quality_warnings_total",
			Help:      help("Data-quality warnings attached to resolved contexts."),
		}, []string{"warning"}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rtrwh",
			Name:      "records_published_total",
			Help:      help("Assessment records written to Kafka."),
		}),
		RecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rtrwh",
			Name:      "records_dropped_total",
			Help:      help("Assessment records dropped on a full queue or after exhausted retries."),
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rtrwh",
			Name:      "publish_errors_total",
			Help:      help("Failed batch writes to Kafka."),
		}),
		PublisherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rtrwh",
			Name:      "publisher_running",
			Help:      help("1 when the record publisher is active, 0 when shut down."),
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rtrwh",
			Name:      "publish_batch_size",
			Help:      help("Number of records per published batch."),
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
	}
}
