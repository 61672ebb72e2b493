package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()

	metric := &dto.Metric{}
	require.NoError(t, g.Write(metric))
	gauge := metric.GetGauge()
	require.NotNil(t, gauge)
	return gauge.GetValue()
}

func counterValue(t *testing.T, collection string) float64 {
	t.Helper()

	metric := &dto.Metric{}
	require.NoError(t, seededRecordsCounter.WithLabelValues(collection).Write(metric))
	counter := metric.GetCounter()
	require.NotNil(t, counter)
	return counter.GetValue()
}

func TestRecordLeaderboardRebuilt(t *testing.T) {
	ts := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

	RecordLeaderboardRebuilt(10, ts)

	assert.Equal(t, float64(ts.Unix()), gaugeValue(t, leaderboardRebuildGauge))
	assert.Equal(t, 10.0, gaugeValue(t, leaderboardSizeGauge))
}

func TestRecordLeaderboardRebuiltIgnoresZeroTime(t *testing.T) {
	ts := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
	RecordLeaderboardRebuilt(7, ts)

	RecordLeaderboardRebuilt(0, time.Time{})

	assert.Equal(t, float64(ts.Unix()), gaugeValue(t, leaderboardRebuildGauge))
	assert.Equal(t, 7.0, gaugeValue(t, leaderboardSizeGauge))
}

func TestRecordSeededAccumulatesPerCollection(t *testing.T) {
	usersBefore := counterValue(t, "users")
	teamsBefore := counterValue(t, "teams")

	RecordSeeded("users", 10)
	RecordSeeded("users", 10)
	RecordSeeded("teams", 2)

	assert.Equal(t, usersBefore+20, counterValue(t, "users"))
	assert.Equal(t, teamsBefore+2, counterValue(t, "teams"))
}
