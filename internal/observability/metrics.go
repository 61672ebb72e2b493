package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	leaderboardRebuildGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "octofit",
		Subsystem: "leaderboard",
		Name:      "last_rebuild_timestamp_seconds",
		Help:      "Unix timestamp of the most recent leaderboard rebuild.",
	})
	leaderboardSizeGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "octofit",
		Subsystem: "leaderboard",
		Name:      "entries",
		Help:      "Number of entries produced by the most recent rebuild.",
	})
	seededRecordsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "octofit",
		Subsystem: "seed",
		Name:      "records_total",
		Help:      "Records inserted by the seed command, by collection.",
	}, []string{"collection"})
)

func init() {
	prometheus.MustRegister(leaderboardRebuildGauge, leaderboardSizeGauge, seededRecordsCounter)
}

// RecordLeaderboardRebuilt updates the rebuild watermark gauges.
func RecordLeaderboardRebuilt(entries int, ts time.Time) {
	if ts.IsZero() {
		return
	}
	leaderboardRebuildGauge.Set(float64(ts.Unix()))
	leaderboardSizeGauge.Set(float64(entries))
}

// RecordSeeded increments the per-collection seed counter.
func RecordSeeded(collection string, count int) {
	seededRecordsCounter.WithLabelValues(collection).Add(float64(count))
}
