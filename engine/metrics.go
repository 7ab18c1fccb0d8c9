package engine

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/noodles-run/noodles-server/types"
)

// Metrics mirrors the teacher's engine/metrics.go shape (Namespace/Subsystem
// CounterVec/HistogramVec registered via MustRegister), retargeted from
// rule-chain execution counters onto scene-graph activity per SPEC_FULL's
// domain-stack wiring of prometheus/client_golang.
var (
	componentsAlive = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "noodles",
		Subsystem: "scene",
		Name:      "components_alive",
		Help:      "Number of live components currently held in the registry, by kind.",
	}, []string{"kind"})

	broadcastsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "noodles",
		Subsystem: "scene",
		Name:      "broadcasts_total",
		Help:      "Number of frames broadcast to all connected clients, by action.",
	}, []string{"action"})

	dispatchLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "noodles",
		Subsystem: "scene",
		Name:      "method_dispatch_seconds",
		Help:      "Method handler execution latency.",
	}, []string{"method"})

	dispatchErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "noodles",
		Subsystem: "scene",
		Name:      "method_dispatch_errors_total",
		Help:      "Method invocations that ended in a method_exception reply, by code.",
	}, []string{"method", "code"})
)

func init() {
	prometheus.MustRegister(componentsAlive, broadcastsTotal, dispatchLatency, dispatchErrorsTotal)
}

func observeComponentCreated(kind types.Kind) {
	componentsAlive.WithLabelValues(kind.String()).Inc()
}

func observeComponentDeleted(kind types.Kind) {
	componentsAlive.WithLabelValues(kind.String()).Dec()
}

func observeBroadcast(action string) {
	broadcastsTotal.WithLabelValues(action).Inc()
}
