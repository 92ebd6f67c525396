package optimizer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	solveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "factory_planner_solve_duration_seconds",
			Help:    "Time spent in the LP solver per optimization.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	solveStatus = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factory_planner_solve_status_total",
			Help: "Solver outcomes by status.",
		},
		[]string{"status"},
	)
)
