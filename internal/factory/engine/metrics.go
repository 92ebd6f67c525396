package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factory_planner_queries_total",
			Help: "Compiled queries by kind.",
		},
		[]string{"kind"},
	)

	queryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factory_planner_query_errors_total",
			Help: "Failed queries by error code.",
		},
		[]string{"code"},
	)
)
