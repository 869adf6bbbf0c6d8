package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the dataset pipeline and the
// chart endpoint.
type Metrics struct {
	// Dataset metrics, set once at startup.
	DatasetRows      prometheus.Gauge
	DatasetYears     prometheus.Gauge
	UnmappedRegions  prometheus.Gauge
	PipelineDuration prometheus.Histogram

	// Chart rendering metrics.
	ChartRenders        *prometheus.CounterVec // labels: outcome={ok,empty}
	ChartRenderDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DatasetRows,
		m.DatasetYears,
		m.UnmappedRegions,
		m.PipelineDuration,
		m.ChartRenders,
		m.ChartRenderDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "zillow_map",
			Name:      "dataset_rows",
			Help:      "Annual observations held in memory.",
		}),
		DatasetYears: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "zillow_map",
			Name:      "dataset_years",
			Help:      "Distinct years selectable on the slider.",
		}),
		UnmappedRegions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "zillow_map",
			Name:      "dataset_unmapped_regions",
			Help:      "Regions without a postal code; they are not drawn.",
		}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "zillow_map",
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of the startup load and transform.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		ChartRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zillow_map",
			Name:      "chart_renders_total",
			Help:      "Choropleth renders by outcome.",
		}, []string{"outcome"}),
		ChartRenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "zillow_map",
			Name:      "chart_render_duration_seconds",
			Help:      "Time to build one choropleth figure.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
	}
}
