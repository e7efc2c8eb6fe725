package bridge

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// unknownChannelLabel collects calls to channels that do not exist, keeping label values bounded.
const unknownChannelLabel = "unknown"

var (
	callsTotal   *prometheus.CounterVec   //nolint:gochecknoglobals
	callDuration *prometheus.HistogramVec //nolint:gochecknoglobals
	metricsOnce  sync.Once                //nolint:gochecknoglobals
)

func registerMetrics() {
	metricsOnce.Do(func() {
		callsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_calls_total",
				Help: "Number of bridge calls, differentiated by channel and outcome.",
			},
			[]string{"channel", "outcome"},
		)

		callDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridge_call_duration_seconds",
				Help:    "Latency of bridge calls by channel.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"channel"},
		)
	})
}

func observe(channel string, result any, elapsed time.Duration) {
	if callsTotal == nil {
		return
	}

	label := "success"
	if o, isOutcome := result.(outcome); isOutcome && !o.OK() {
		label = "failure"
	}

	callsTotal.WithLabelValues(channel, label).Inc()
	callDuration.WithLabelValues(channel).Observe(elapsed.Seconds())
}
