// Package observability holds the Prometheus instruments of the training and
// prediction pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pricecast"

// Metrics holds the Prometheus counters, histograms, and gauges for the pipeline.
type Metrics struct {
	FitsTotal        *prometheus.CounterVec // labels: outcome={success,error}
	FitDuration      prometheus.Histogram
	SolverIterations prometheus.Histogram
	TrainingSamples  prometheus.Gauge
	FeatureWidth     prometheus.Gauge

	// Evaluation of the most recent fit on its held-out split.
	TestRSquared prometheus.Gauge
	TestRMSE     prometheus.Gauge

	// Inference metrics.
	PredictionsTotal prometheus.Counter
	UnseenCategories *prometheus.CounterVec // labels: field={item,category,sourceCountry,disasterType}
}

func newMetrics() *Metrics {
	return &Metrics{
		FitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fits_total",
			Help:      "Pipeline fits by outcome.",
		}, []string{"outcome"}),
		FitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fit_duration_seconds",
			Help:      "Duration of a complete split-encode-train-evaluate cycle.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}),
		SolverIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solver_iterations",
			Help:      "Passes over the training data performed by the SDCA solver.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 1000},
		}),
		TrainingSamples: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "training_samples",
			Help:      "Number of records in the training split of the last fit.",
		}),
		FeatureWidth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feature_width",
			Help:      "Length of the assembled feature vector of the last fit.",
		}),
		TestRSquared: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "test_r_squared",
			Help:      "R² of the last fit on its test split (NaN when undefined).",
		}),
		TestRMSE: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "test_rmse",
			Help:      "RMSE of the last fit on its test split.",
		}),
		PredictionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Total single-record and batch predictions served.",
		}),
		UnseenCategories: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unseen_categories_total",
			Help:      "Categorical values absent from the fitted vocabulary, by field.",
		}, []string{"field"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.FitsTotal,
		m.FitDuration,
		m.SolverIterations,
		m.TrainingSamples,
		m.FeatureWidth,
		m.TestRSquared,
		m.TestRMSE,
		m.PredictionsTotal,
		m.UnseenCategories,
	}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates the pipeline metrics and registers them with reg.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
