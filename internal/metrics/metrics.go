// Package metrics exposes resolution counters for scraping.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "kinlink"

type Metrics struct {
	Edges    *prometheus.CounterVec
	Clusters *prometheus.CounterVec
	Runs     *prometheus.CounterVec
}

// NewMetrics registers the counters with reg. A nil reg leaves them
// unregistered, which suits tests and one-off runs.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Edges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edges_total",
			Help:      "Edges written, by deciding rule and action.",
		}, []string{"rule", "action"}),
		Clusters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clusters_total",
			Help:      "Clusters processed, by result.",
		}, []string{"result"}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Resolution runs, by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.Edges, m.Clusters, m.Runs)
	}
	return m
}

func (m *Metrics) Edge(rule, action string) {
	if m == nil {
		return
	}
	m.Edges.WithLabelValues(rule, action).Inc()
}

func (m *Metrics) Cluster(result string) {
	if m == nil {
		return
	}
	m.Clusters.WithLabelValues(result).Inc()
}

func (m *Metrics) Run(result string) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(result).Inc()
}
