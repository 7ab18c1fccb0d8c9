package aspect

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/noodles-run/noodles-server/types"
)

// opsTotal and opDuration mirror engine/metrics.go's
// Namespace/Subsystem/CounterVec/HistogramVec shape, registered under a
// distinct "aspect" subsystem so a Scene wired with Metrics records
// per-operation counters independently of the engine's own always-on scene
// metrics - this aspect is an opt-in, embedder-attached observation point,
// not a replacement for them.
var (
	opsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "noodles",
		Subsystem: "aspect",
		Name:      "operations_total",
		Help:      "Scene operations observed by the Metrics aspect, by action, kind and outcome.",
	}, []string{"action", "kind", "outcome"})

	opDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "noodles",
		Subsystem: "aspect",
		Name:      "operation_seconds",
		Help:      "Wall-clock time between the Metrics aspect's Before and After hooks for an operation.",
	}, []string{"action", "kind"})
)

func init() {
	prometheus.MustRegister(opsTotal, opDuration)
}

var (
	_ types.BeforeOperationAspect = (*Metrics)(nil)
	_ types.AfterOperationAspect  = (*Metrics)(nil)
)

// Metrics times and counts every scene operation it is attached to, the
// aspect-level counterpart to the teacher's engine/metrics.go counters -
// timing state is a single field rather than a map keyed by operation,
// since every scene-affecting call on one Scene is serialized (§5's
// single-threaded cooperative model), so Before/After pairs never nest or
// interleave for a given instance.
type Metrics struct {
	start time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Order() int { return 500 }

func (m *Metrics) New() types.Aspect { return NewMetrics() }

func (m *Metrics) PointCut(types.Operation) bool { return true }

func (m *Metrics) Before(op types.Operation) (types.Operation, error) {
	m.start = time.Now()
	return op, nil
}

func (m *Metrics) After(op types.Operation, opErr error) {
	opDuration.WithLabelValues(op.Action, op.Kind.String()).Observe(time.Since(m.start).Seconds())
	outcome := "ok"
	if opErr != nil {
		outcome = "error"
	}
	opsTotal.WithLabelValues(op.Action, op.Kind.String(), outcome).Inc()
}
