package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegistry(reg)

	m.FitsTotal.WithLabelValues("success").Inc()
	m.UnseenCategories.WithLabelValues("item").Add(2)
	m.PredictionsTotal.Inc()
	m.TrainingSamples.Set(80)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["pricecast_fits_total"])
	assert.True(t, names["pricecast_unseen_categories_total"])
	assert.True(t, names["pricecast_predictions_total"])
	assert.True(t, names["pricecast_training_samples"])

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.UnseenCategories.WithLabelValues("item")), 1e-9)
	assert.InDelta(t, 80.0, testutil.ToFloat64(m.TrainingSamples), 1e-9)
}

func TestNewMetricsWithRegistryRejectsDuplicates(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetricsWithRegistry(reg)
	assert.Panics(t, func() { NewMetricsWithRegistry(reg) })
}

func TestNewMetricsForTestingIsIndependent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.PredictionsTotal.Inc()
	assert.InDelta(t, 1.0, testutil.ToFloat64(a.PredictionsTotal), 1e-9)
	assert.InDelta(t, 0.0, testutil.ToFloat64(b.PredictionsTotal), 1e-9)
}
