package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Decision engine collectors.

var (
	CyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cem",
		Name:      "cycles_total",
		Help:      "Total decision cycles, by path (evaluate, override, standstill)",
	}, []string{"path"})

	RuleFiredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cem",
		Name:      "rule_fired_total",
		Help:      "Cycles in which a condition rule turned experimental mode on",
	}, []string{"rule"})

	TransitionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cem",
		Name:      "transitions_total",
		Help:      "Changes of the (decision, status) pair",
	})

	ExperimentalMode = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cem",
		Name:      "experimental_mode",
		Help:      "1 while experimental mode is requested",
	})

	StatusCode = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cem",
		Name:      "status_code",
		Help:      "Status code published on the last cycle",
	})

	DetectorLatched = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cem",
		Name:      "detector_latched",
		Help:      "1 while a detector latch is set",
	}, []string{"detector"})

	RegisterErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cem",
		Name:      "register_errors_total",
		Help:      "Status register failures, by operation (read, write)",
	}, []string{"op"})

	UpdateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cem",
		Name:      "update_duration_seconds",
		Help:      "Time spent in one decision cycle",
		Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
	})
)

// BoolGauge converts a flag to a gauge value.
func BoolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
