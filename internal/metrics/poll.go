package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Poll loop Prometheus metrics.
var (
	PollCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "usagerelay",
			Name:      "poll_cycles_total",
			Help:      "Total number of upstream fetch cycles by outcome",
		},
		[]string{"outcome"},
	)

	PollDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "usagerelay",
			Name:      "poll_duration_seconds",
			Help:      "Upstream fetch duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	LastSuccessTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "usagerelay",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful fetch",
		},
	)

	Utilization = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "usagerelay",
			Name:      "utilization_percent",
			Help:      "Last reported utilization per usage window",
		},
		[]string{"window"},
	)
)

var registerPollOnce sync.Once

// RegisterPollMetrics registers Prometheus poll metrics on the default registry.
// Repeated calls are no-ops.
func RegisterPollMetrics() {
	registerPollOnce.Do(func() {
		prometheus.MustRegister(PollCyclesTotal)
		prometheus.MustRegister(PollDuration)
		prometheus.MustRegister(LastSuccessTimestamp)
		prometheus.MustRegister(Utilization)
	})
}
