package resolve

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "factory_planner_resolver_cache_hits_total",
			Help: "Entity expressions answered from the resolver cache.",
		},
	)

	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "factory_planner_resolver_cache_misses_total",
			Help: "Entity expressions matched against the catalog.",
		},
	)
)
