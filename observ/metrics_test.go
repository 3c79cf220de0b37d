package observ_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/vmkit/pea/observ"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestNewMetrics_RegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	observ.NewMetrics(reg)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 5)
}

func TestNewMetrics_CountersStartAtZeroAndIncrement(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observ.NewMetrics(reg)

	require.Equal(t, float64(0), counterValue(t, m.Replaced))
	m.Replaced.Add(3)
	require.Equal(t, float64(3), counterValue(t, m.Replaced))

	m.BackEdgeBailouts.Inc()
	require.Equal(t, float64(1), counterValue(t, m.BackEdgeBailouts))
}
