package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCounter_Idempotent(t *testing.T) {
	reg := NewMetricsRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "x_total"})

	require.NoError(t, reg.RegisterCounter("comp", "x", c))
	require.NoError(t, reg.RegisterCounter("comp", "x", c))
}

func TestRegisterGauge_DistinctKeys(t *testing.T) {
	reg := NewMetricsRegistry()
	g1 := prometheus.NewGauge(prometheus.GaugeOpts{Name: "g1"})
	g2 := prometheus.NewGauge(prometheus.GaugeOpts{Name: "g2"})

	assert.NoError(t, reg.RegisterGauge("comp", "g1", g1))
	assert.NoError(t, reg.RegisterGauge("comp", "g2", g2))
}

func TestChannelStats_RecordNilSafe(t *testing.T) {
	var cs *ChannelStats
	assert.NotPanics(t, func() {
		cs.RecordTx(10)
		cs.RecordRx(10)
	})
}

func TestChannelStats_Record(t *testing.T) {
	reg := NewMetricsRegistry()
	cs, err := NewChannelStats(reg, "probe")
	require.NoError(t, err)

	cs.RecordTx(5)
	cs.RecordRx(7)

	mf, err := reg.Gatherer().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mf)
}
