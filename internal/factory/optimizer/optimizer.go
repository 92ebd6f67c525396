// Package optimizer turns compiled optimization queries into linear programs
// over a catalog's structure and extracts readable results from solutions.
package optimizer

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/rsned/factory-planner/internal/factory/catalog"
	"github.com/rsned/factory-planner/internal/factory/lp"
	"github.com/rsned/factory-planner/internal/factory/query"
)

// Optimizer solves optimization queries against one catalog. It is safe for
// concurrent use; each call builds its own model.
type Optimizer struct {
	catalog   *catalog.Catalog
	structure *Structure
	tolerance float64
	logger    *slog.Logger
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithTolerance sets the simplex tolerance.
func WithTolerance(tol float64) Option {
	return func(o *Optimizer) {
		if tol > 0 {
			o.tolerance = tol
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Optimizer) {
		if l != nil {
			o.logger = l
		}
	}
}

// New builds the catalog structure once.
func New(c *catalog.Catalog, opts ...Option) *Optimizer {
	o := &Optimizer{
		catalog:   c,
		structure: NewStructure(c),
		tolerance: lp.DefaultTolerance,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Catalog returns the catalog the optimizer was built for.
func (o *Optimizer) Catalog() *catalog.Catalog { return o.catalog }

// Optimize solves q. Infeasible and unbounded queries are reported in the
// solution status; the only error is a done context.
func (o *Optimizer) Optimize(ctx context.Context, q *query.OptimizationQuery) (*lp.Solution, error) {
	m := o.Model(q)

	start := time.Now()
	sol, err := m.Solve(ctx, lp.WithTolerance(o.tolerance), lp.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	solveDuration.Observe(elapsed.Seconds())
	solveStatus.WithLabelValues(sol.Status().String()).Inc()
	o.logger.Debug("solved optimization",
		"query", q.Raw(),
		"status", sol.Status().String(),
		"objective", sol.Objective(),
		"rows", len(m.Rows()),
		"duration", elapsed)
	return sol, nil
}

// Model builds the linear program for q: structure rows, default bounds,
// query constraints, strictness and the objective.
func (o *Optimizer) Model(q *query.OptimizationQuery) *lp.Model {
	m := lp.NewModel()
	for _, v := range o.structure.Vars() {
		m.AddVar(v)
	}
	for _, r := range o.structure.Rows() {
		m.AddRow(r)
	}

	objective := q.ObjectiveCoefficients()
	named := func(v string) bool {
		_, inObjective := objective[v]
		return inObjective || q.Constrained(v)
	}

	c := o.catalog
	for _, it := range c.Items() {
		switch {
		case it.Resource:
			m.Bound(it.Var(), lp.LE, 0)
			if q.StrictInputs() && !named(it.Var()) {
				m.Bound(it.Var(), lp.GE, 0)
			}
		default:
			if !q.Constrained(it.Var()) {
				m.Bound(it.Var(), lp.GE, 0)
			}
			if q.StrictOutputs() && !named(it.Var()) {
				m.Bound(it.Var(), lp.LE, 0)
			}
		}
	}
	for _, r := range c.Recipes() {
		boundBuilding(m, r.Var(), q.StrictRecipes(), named)
	}
	for _, p := range c.PowerRecipes() {
		boundBuilding(m, p.Var(), q.StrictPowerRecipes(), named)
	}
	for _, cr := range c.Crafters() {
		boundBuilding(m, cr.Var(), q.StrictCrafters(), named)
	}
	for _, g := range c.Generators() {
		boundBuilding(m, g.Var(), q.StrictGenerators(), named)
	}

	for _, b := range []struct {
		sense lp.Sense
		m     map[string]float64
	}{
		{lp.EQ, q.EqConstraints()},
		{lp.GE, q.GeConstraints()},
		{lp.LE, q.LeConstraints()},
	} {
		for _, v := range slices.Sorted(maps.Keys(b.m)) {
			m.Bound(v, b.sense, b.m[v])
		}
	}

	m.SetObjective(q.MaximizeObjective(), objective)
	return m
}

// boundBuilding keeps a recipe or building count non-negative and pins it to
// zero when its category is strict and the query did not name it.
func boundBuilding(m *lp.Model, v string, strict bool, named func(string) bool) {
	if strict && !named(v) {
		m.Bound(v, lp.EQ, 0)
		return
	}
	m.Bound(v, lp.GE, 0)
}
