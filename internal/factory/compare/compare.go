// Package compare computes per-unit statistics for the recipes that produce
// one item and expresses each alternate relative to the standard recipe.
package compare

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/rsned/factory-planner/internal/factory/lp"
	"github.com/rsned/factory-planner/internal/factory/optimizer"
	"github.com/rsned/factory-planner/internal/factory/query"
	"github.com/rsned/factory-planner/pkg/factory"
)

// Metrics describes the full supply chain behind one unit per minute of the
// product under one resource metric.
type Metrics struct {
	// ResourceRequirements is the aggregate resource consumption.
	ResourceRequirements float64
	// Inputs maps raw input vars to their consumption per minute.
	Inputs map[string]float64
	// PowerConsumption is the net power drawn, in MW.
	PowerConsumption float64
	// Complexity is the number of distinct recipes that run.
	Complexity int
}

// Stats are the metrics of one recipe.
type Stats struct {
	Recipe     *factory.Recipe
	Unweighted Metrics
	Weighted   Metrics
}

// Delta is a percentage change against the base recipe. New marks a
// statistic the base recipe does not have.
type Delta struct {
	Percent float64
	New     bool
}

// NewDelta compares alt against base.
func NewDelta(base, alt float64) Delta {
	if base == 0 {
		return Delta{New: alt != 0}
	}
	return Delta{Percent: (alt - base) / base * 100}
}

// String renders the delta as "+N%", "-N%", "0%" or "NEW".
func (d Delta) String() string {
	if d.New {
		return "NEW"
	}
	n := int(math.Round(d.Percent))
	s := strconv.Itoa(n) + "%"
	if n > 0 {
		s = "+" + s
	}
	return s
}

// MetricDeltas are the deltas of one recipe's metrics against the base.
type MetricDeltas struct {
	ResourceRequirements Delta
	Inputs               map[string]Delta
	PowerConsumption     Delta
	Complexity           Delta
}

func newMetricDeltas(base, alt Metrics) MetricDeltas {
	d := MetricDeltas{
		ResourceRequirements: NewDelta(base.ResourceRequirements, alt.ResourceRequirements),
		Inputs:               make(map[string]Delta, len(alt.Inputs)),
		PowerConsumption:     NewDelta(base.PowerConsumption, alt.PowerConsumption),
		Complexity:           NewDelta(float64(base.Complexity), float64(alt.Complexity)),
	}
	for v, amount := range alt.Inputs {
		d.Inputs[v] = NewDelta(base.Inputs[v], amount)
	}
	return d
}

// Related is an alternate recipe with its deltas against the base.
type Related struct {
	Stats
	UnweightedDeltas MetricDeltas
	WeightedDeltas   MetricDeltas
}

// Comparison is the outcome of comparing every recipe for one product.
type Comparison struct {
	Product *factory.Item
	Base    Stats
	Related []Related

	names map[string]string
}

// InputName returns the display name of an input var.
func (c *Comparison) InputName(v string) string {
	if name, ok := c.names[v]; ok {
		return name
	}
	return v
}

// Comparator solves the per-recipe supply chains. It is safe for concurrent
// use.
type Comparator struct {
	optimizer *optimizer.Optimizer
	logger    *slog.Logger
}

// New returns a comparator that solves with o.
func New(o *optimizer.Optimizer, logger *slog.Logger) *Comparator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Comparator{optimizer: o, logger: logger}
}

// Compare computes statistics for the base recipe and every related recipe of
// q. Related recipes whose chain cannot be solved are left out.
func (c *Comparator) Compare(ctx context.Context, q *query.RecipeCompareQuery) (*Comparison, error) {
	base, ok, err := c.stats(ctx, q, q.BaseRecipe())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, factory.NewErrorWithContext(factory.ErrCodeCompilation,
			"Could not compute statistics for "+q.BaseRecipe().HumanReadableName(),
			map[string]any{"recipe": q.BaseRecipe().Var()})
	}

	cmp := &Comparison{Product: q.Product(), Base: base, names: make(map[string]string)}
	for _, r := range q.RelatedRecipes() {
		s, ok, err := c.stats(ctx, q, r)
		if err != nil {
			return nil, err
		}
		if !ok {
			c.logger.Warn("skipping recipe without a feasible chain", "recipe", r.Var())
			continue
		}
		cmp.Related = append(cmp.Related, Related{
			Stats:            s,
			UnweightedDeltas: newMetricDeltas(base.Unweighted, s.Unweighted),
			WeightedDeltas:   newMetricDeltas(base.Weighted, s.Weighted),
		})
	}

	for _, v := range cmp.InputVars() {
		if e, ok := c.optimizer.Catalog().Entity(v); ok {
			cmp.names[v] = e.HumanReadableName()
		}
	}
	return cmp, nil
}

// stats solves the chain for one unit per minute of the product made only by
// r, once per resource metric. ok is false when either solve is not optimal.
func (c *Comparator) stats(ctx context.Context, q *query.RecipeCompareQuery, r *factory.Recipe) (Stats, bool, error) {
	s := Stats{Recipe: r}
	for _, m := range []struct {
		aggregate string
		into      *Metrics
	}{
		{factory.VarUnweightedResources, &s.Unweighted},
		{factory.VarWeightedResources, &s.Weighted},
	} {
		opt := c.chainQuery(q, r, m.aggregate)
		sol, err := c.optimizer.Optimize(ctx, opt)
		if err != nil {
			return Stats{}, false, err
		}
		if sol.Status() != lp.Optimal {
			c.logger.Debug("recipe chain not optimal",
				"recipe", r.Var(), "metric", m.aggregate, "status", sol.Status().String())
			return Stats{}, false, nil
		}
		*m.into = c.metrics(sol, m.aggregate)
	}
	return s, true, nil
}

func (c *Comparator) chainQuery(q *query.RecipeCompareQuery, r *factory.Recipe, aggregate string) *query.OptimizationQuery {
	product := q.Product()
	b := query.NewBuilder(fmt.Sprintf("produce 1 %s using %s", product.HumanReadableName(), r.HumanReadableName()))
	b.Eq(product.Var(), 1)
	for _, other := range c.optimizer.Catalog().RecipesForProduct(product.Var()) {
		if other.Var() != r.Var() {
			b.Eq(other.Var(), 0)
		}
	}
	if q.ExcludeAlternates() {
		for _, other := range c.optimizer.Catalog().Recipes() {
			if other.Alternate && other.Var() != r.Var() {
				b.Eq(other.Var(), 0)
			}
		}
	}
	b.SetObjective(false, map[string]float64{aggregate: -1})
	return b.Build()
}

func (c *Comparator) metrics(sol *lp.Solution, aggregate string) Metrics {
	ex := optimizer.Extract(c.optimizer.Catalog(), sol)
	m := Metrics{
		ResourceRequirements: optimizer.Clean(-sol.Value(aggregate)),
		Inputs:               make(map[string]float64, len(ex.Inputs)),
		PowerConsumption:     optimizer.Clean(-ex.NetPower),
	}
	for _, in := range ex.Inputs {
		m.Inputs[in.Var()] = in.Value
	}
	for _, r := range ex.Recipes {
		if r.Entity.Kind() == factory.KindRecipe {
			m.Complexity++
		}
	}
	return m
}
