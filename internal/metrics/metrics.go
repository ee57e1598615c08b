// internal/metrics/metrics.go
//
// Prometheus collectors shared by the cache, the relationship cascade and the
// validation pipeline. Registered once on the default registry and served by
// the HTTP server at GET /metrics.

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CacheLookups counts cache reads by cache name and result (hit|miss|expired).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "linkdle",
		Name:      "cache_lookups_total",
		Help:      "Cache lookups by cache and result.",
	}, []string{"cache", "result"})

	// CacheEvictions counts entries removed by capacity eviction.
	CacheEvictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "linkdle",
		Name:      "cache_evictions_total",
		Help:      "Entries evicted because a cache reached capacity.",
	}, []string{"cache"})

	// StageResults counts relationship cascade stage results (accept|decline|error|skip).
	StageResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "linkdle",
		Name:      "relation_stage_results_total",
		Help:      "Relationship cascade stage results.",
	}, []string{"stage", "result"})

	// Validations counts pipeline outcomes by result and rule code.
	Validations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "linkdle",
		Name:      "validations_total",
		Help:      "Validation pipeline outcomes.",
	}, []string{"result", "code"})
)

// Handler exposes the default registry.
func Handler() http.Handler { return promhttp.Handler() }
