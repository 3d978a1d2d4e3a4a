package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the notification pipeline
var (
	// notificationEventsTotal counts every callback by kind and final outcome
	notificationEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_events_total",
			Help: "Total number of wiki events processed, by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// notificationDispatchDuration tracks webhook send duration
	notificationDispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_dispatch_duration_seconds",
			Help:    "Webhook dispatch duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"outcome"},
	)

	// notificationDroppedTotal tracks queued dispatches that never ran
	notificationDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dropped_total",
			Help: "Total number of dropped notifications",
		},
		[]string{"reason"}, // reason: pool_full|shutdown
	)

	// activeDispatches tracks dispatches currently running on the worker pool
	activeDispatches = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_active_dispatches",
			Help: "Number of dispatches currently running in the background",
		},
	)
)

// RecordOutcome counts one processed event.
func RecordOutcome(kind string, outcome Outcome) {
	notificationEventsTotal.WithLabelValues(kind, string(outcome)).Inc()
}

// RecordDispatch records how long a dispatch took and how it ended.
func RecordDispatch(outcome Outcome, duration time.Duration) {
	notificationDispatchDuration.WithLabelValues(string(outcome)).Observe(duration.Seconds())
}

// RecordDropped records a queued dispatch that was dropped.
//
// Parameters:
//   - reason: pool_full or shutdown
func RecordDropped(reason string) {
	notificationDroppedTotal.WithLabelValues(reason).Inc()
}

// IncrementActiveDispatches increments the background dispatch gauge by 1.
func IncrementActiveDispatches() {
	activeDispatches.Inc()
}

// DecrementActiveDispatches decrements the background dispatch gauge by 1.
func DecrementActiveDispatches() {
	activeDispatches.Dec()
}
