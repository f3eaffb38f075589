package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.Edge("msed-create", "create")
	m.Edge("msed-create", "create")
	m.Cluster("ok")
	m.Run("failed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Edges.WithLabelValues("msed-create", "create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Clusters.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("failed")))

	n, err := testutil.GatherAndCount(reg)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Edge("r", "a")
		m.Cluster("ok")
		m.Run("ok")
	})
}
