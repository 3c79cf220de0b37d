package observ

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the pass's Prometheus collector set. It is only ever
// constructed (and its collectors only ever registered) when a caller
// supplies a peaconf.WithMetrics registerer; a run with no registerer
// simply never touches this type.
type Metrics struct {
	AllocationsTracked prometheus.Counter
	Replaced           prometheus.Counter
	Irreplaceable       prometheus.Counter
	Materializations    prometheus.Counter
	BackEdgeBailouts    prometheus.Counter
}

// NewMetrics builds and registers a fresh Metrics against reg. reg must be
// non-nil; callers gate construction on peaconf.Config.MetricsRegisterer
// being set.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AllocationsTracked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pea",
			Name:      "allocations_tracked_total",
			Help:      "Candidate allocations that entered tracking.",
		}),
		Replaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pea",
			Name:      "allocations_replaced_total",
			Help:      "Allocations fully scalar-replaced with no residual heap object.",
		}),
		Irreplaceable: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pea",
			Name:      "allocations_irreplaceable_total",
			Help:      "Allocations that ended a run marked Irreplaceable.",
		}),
		Materializations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pea",
			Name:      "materializations_total",
			Help:      "Materialization points queued across all runs.",
		}),
		BackEdgeBailouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pea",
			Name:      "back_edge_bailouts_total",
			Help:      "Runs aborted outright because the graph had a back edge.",
		}),
	}
	reg.MustRegister(m.AllocationsTracked, m.Replaced, m.Irreplaceable, m.Materializations, m.BackEdgeBailouts)
	return m
}
