package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func TestRecorderObservesBatchAndRows(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ObserveBatch("accounts", 100)
	r.ObserveBatch("accounts", 50)

	assert.Equal(t, float64(2), counterValue(t, r.batchesWritten.WithLabelValues("accounts")))
	assert.Equal(t, float64(150), counterValue(t, r.rowsWritten.WithLabelValues("accounts")))
}

func TestRecorderObservesChannelDepth(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ObserveChannelDepth("events", 7)
	assert.Equal(t, float64(7), gaugeValue(t, r.channelDepth.WithLabelValues("events")))

	r.ObserveChannelDepth("events", 3)
	assert.Equal(t, float64(3), gaugeValue(t, r.channelDepth.WithLabelValues("events")))
}

func TestRecorderObservesErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ObserveError("transactions")
	assert.Equal(t, float64(1), counterValue(t, r.backupErrors.WithLabelValues("transactions")))
}

func TestNilRecorderIsNoOp(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveBatch("t", 1)
		r.ObserveChannelDepth("t", 1)
		r.ObserveError("t")
	})
}
