package optimizer

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/factory-planner/internal/factory/catalog"
	"github.com/rsned/factory-planner/internal/factory/catalog/catalogtest"
	"github.com/rsned/factory-planner/internal/factory/compiler"
	"github.com/rsned/factory-planner/internal/factory/grammar"
	"github.com/rsned/factory-planner/internal/factory/lp"
	"github.com/rsned/factory-planner/internal/factory/query"
	"github.com/rsned/factory-planner/internal/factory/resolve"
	"github.com/rsned/factory-planner/pkg/factory"
)

type fixture struct {
	catalog   *catalog.Catalog
	compiler  *compiler.Compiler
	optimizer *Optimizer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := catalogtest.Catalog(t)
	r, err := resolve.New(c)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		catalog:   c,
		compiler:  compiler.New(grammar.New(), r, c, logger),
		optimizer: New(c, WithLogger(logger)),
	}
}

func (f *fixture) solve(t *testing.T, raw string) *lp.Solution {
	t.Helper()
	q, err := f.compiler.Compile(raw)
	require.NoError(t, err)
	opt, ok := q.(*query.OptimizationQuery)
	require.True(t, ok)
	sol, err := f.optimizer.Optimize(context.Background(), opt)
	require.NoError(t, err)
	return sol
}

func TestStructure(t *testing.T) {
	c := catalogtest.Catalog(t)
	s := NewStructure(c)

	assert.Len(t, s.Rows(), len(c.Items())+len(c.Crafters())+len(c.Generators())+len(factory.AggregateVars()))
	assert.Len(t, s.Vars(), c.Len()+len(factory.AggregateVars()))
	for _, r := range s.Rows() {
		assert.Equal(t, lp.EQ, r.Sense, r.Name)
	}
}

func TestOptimizeIronRods(t *testing.T) {
	f := newFixture(t)
	sol := f.solve(t, "produce 60 iron rods")
	require.Equal(t, lp.Optimal, sol.Status())

	assert.InDelta(t, 4, sol.Value("recipe:iron-rod"), 1e-6)
	assert.InDelta(t, 2, sol.Value("recipe:iron-ingot"), 1e-6)
	assert.InDelta(t, -60, sol.Value("resource:iron-ore"), 1e-6)
	assert.InDelta(t, 4, sol.Value("crafter:constructor"), 1e-6)
	assert.InDelta(t, 2, sol.Value("crafter:smelter"), 1e-6)
	assert.InDelta(t, -24, sol.Value(factory.VarPower), 1e-6)
	assert.InDelta(t, 60, sol.Objective(), 1e-6)

	ex := Extract(f.catalog, sol)
	require.Len(t, ex.Inputs, 1)
	assert.Equal(t, "Iron Ore", ex.Inputs[0].Name())
	assert.InDelta(t, 60, ex.Inputs[0].Value, 1e-6)
	require.Len(t, ex.Outputs, 1)
	assert.Equal(t, "item:iron-rod", ex.Outputs[0].Var())
	require.Len(t, ex.Recipes, 2)
	assert.Equal(t, "Recipe: Iron Ingot", ex.Recipes[0].Name())
	assert.Len(t, ex.Crafters, 2)
	assert.Empty(t, ex.Generators)
	assert.InDelta(t, -24, ex.NetPower, 1e-6)
}

func TestOptimizePower(t *testing.T) {
	f := newFixture(t)
	sol := f.solve(t, "produce ? power from 30 coal")
	require.Equal(t, lp.Optimal, sol.Status())

	assert.InDelta(t, 150, sol.Objective(), 1e-6)
	assert.InDelta(t, 2, sol.Value("generator:coal-generator"), 1e-6)
	assert.InDelta(t, 2, sol.Value("power-recipe:coal-generator:coal"), 1e-6)
}

func TestOptimizePrefersCheapestChain(t *testing.T) {
	f := newFixture(t)
	sol := f.solve(t, "produce 10 screws")
	require.Equal(t, lp.Optimal, sol.Status())
	assert.InDelta(t, 0.1, sol.Value("recipe:alternate:steel-screw"), 1e-6)
	assert.InDelta(t, -1, sol.Value("resource:coal"), 1e-6)
	assert.InDelta(t, -1, sol.Value("resource:iron-ore"), 1e-6)

	sol = f.solve(t, "produce 10 screws without alternate recipes")
	require.Equal(t, lp.Optimal, sol.Status())
	assert.InDelta(t, 0.25, sol.Value("recipe:screw"), 1e-6)
	assert.InDelta(t, 0, sol.Value(factory.VarAlternateRecipes), 1e-6)
	assert.InDelta(t, -2.5, sol.Value("resource:iron-ore"), 1e-6)
}

func TestOptimizeStrictness(t *testing.T) {
	f := newFixture(t)

	sol := f.solve(t, "produce 10 screws from only ? iron ore")
	require.Equal(t, lp.Optimal, sol.Status())
	assert.InDelta(t, 0, sol.Value("resource:coal"), 1e-6)
	assert.InDelta(t, -2.5, sol.Value("resource:iron-ore"), 1e-6)

	// Only cast screw may run, so its ingots must come from outside.
	sol = f.solve(t, "produce 10 screws using cast screw")
	assert.Equal(t, lp.Infeasible, sol.Status())

	sol = f.solve(t, "produce 10 screws from _ iron ingots using cast screw")
	require.Equal(t, lp.Optimal, sol.Status())
	assert.InDelta(t, 0.2, sol.Value("recipe:alternate:cast-screw"), 1e-6)
	assert.InDelta(t, -2.5, sol.Value("item:iron-ingot"), 1e-6)
}

func TestOptimizeOutcomes(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, lp.Infeasible, f.solve(t, "produce 20 plastic without byproducts").Status())
	assert.Equal(t, lp.Unbounded, f.solve(t, "produce ? iron rods").Status())

	sol := f.solve(t, "produce 20 plastic")
	require.Equal(t, lp.Optimal, sol.Status())
	assert.InDelta(t, 10, sol.Value("item:heavy-oil-residue"), 1e-6)
}

func TestOptimizeCanceled(t *testing.T) {
	f := newFixture(t)
	q, err := f.compiler.Compile("produce 60 iron rods")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.optimizer.Optimize(ctx, q.(*query.OptimizationQuery))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractCleansNoise(t *testing.T) {
	c := catalogtest.Catalog(t)
	sol := lp.NewSolution(lp.Optimal, 1, map[string]float64{
		"item:screw":        1e-9,
		"resource:iron-ore": -5,
		"recipe:screw":      2,
		factory.VarPower:    -1e-8,
	})

	ex := Extract(c, sol)
	assert.Empty(t, ex.Outputs)
	require.Len(t, ex.Inputs, 1)
	assert.InDelta(t, 5, ex.Inputs[0].Value, 1e-12)
	require.Len(t, ex.Recipes, 1)
	assert.Zero(t, ex.NetPower)
}
