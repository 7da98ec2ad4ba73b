// Package metrics holds the prometheus collectors updated by the engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Registry is a dedicated registry so that embedding hosts do not collide with the default one.
	Registry = prometheus.NewRegistry()

	VersionResolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gonx_version_resolutions_total",
		Help: "Number of resolved project versions by provenance.",
	}, []string{"provenance"})

	RegistryRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gonx_registry_requests_total",
		Help: "Number of module registry requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	DependencyEdges = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gonx_dependency_edges_total",
		Help: "Number of workspace dependency edges emitted.",
	})

	ManifestRewrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gonx_manifest_rewrites_total",
		Help: "Number of manifest mutations by kind (substituted, inserted).",
	}, []string{"kind"})
)

func init() {
	Registry.MustRegister(VersionResolutions, RegistryRequests, DependencyEdges, ManifestRewrites)
}

// Gather returns a flat name -> value view of all counters, summed across labels.
func Gather() (map[string]float64, error) {
	families, err := Registry.Gather()
	if err != nil {
		return nil, err
	}
	result := make(map[string]float64, len(families))
	for _, family := range families {
		var total float64
		for _, m := range family.GetMetric() {
			if c := m.GetCounter(); c != nil {
				total += c.GetValue()
			}
		}
		result[family.GetName()] = total
	}
	return result, nil
}
