package optimizer

import (
	"math"
	"sort"

	"github.com/rsned/factory-planner/internal/factory/catalog"
	"github.com/rsned/factory-planner/internal/factory/lp"
	"github.com/rsned/factory-planner/pkg/factory"
)

// Epsilon is the magnitude below which solved values count as zero.
const Epsilon = 1e-6

// Amount is a nonzero solved value of one catalog entity.
type Amount struct {
	Entity factory.Entity
	Value  float64
}

// Name returns the entity's display name.
func (a Amount) Name() string { return a.Entity.HumanReadableName() }

// Var returns the entity's var.
func (a Amount) Var() string { return a.Entity.Var() }

// Extraction partitions an optimal solution. Inputs hold consumption as
// positive amounts. Recipes include power recipes.
type Extraction struct {
	Inputs     []Amount
	Outputs    []Amount
	Recipes    []Amount
	Crafters   []Amount
	Generators []Amount
	NetPower   float64
	Objective  float64
}

// Extract partitions the nonzero catalog vars of an optimal solution. Every
// list is ordered by display name.
func Extract(c *catalog.Catalog, sol *lp.Solution) *Extraction {
	ex := &Extraction{
		NetPower:  Clean(sol.Value(factory.VarPower)),
		Objective: Clean(sol.Objective()),
	}

	for _, it := range c.Items() {
		v := Clean(sol.Value(it.Var()))
		switch {
		case v < 0:
			ex.Inputs = append(ex.Inputs, Amount{Entity: it, Value: -v})
		case v > 0:
			ex.Outputs = append(ex.Outputs, Amount{Entity: it, Value: v})
		}
	}
	for _, r := range c.Recipes() {
		ex.Recipes = appendNonzero(ex.Recipes, r, sol)
	}
	for _, p := range c.PowerRecipes() {
		ex.Recipes = appendNonzero(ex.Recipes, p, sol)
	}
	for _, cr := range c.Crafters() {
		ex.Crafters = appendNonzero(ex.Crafters, cr, sol)
	}
	for _, g := range c.Generators() {
		ex.Generators = appendNonzero(ex.Generators, g, sol)
	}

	for _, list := range [][]Amount{ex.Inputs, ex.Outputs, ex.Recipes, ex.Crafters, ex.Generators} {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	}
	return ex
}

func appendNonzero(list []Amount, e factory.Entity, sol *lp.Solution) []Amount {
	if v := Clean(sol.Value(e.Var())); v != 0 {
		return append(list, Amount{Entity: e, Value: v})
	}
	return list
}

// Clean maps values within Epsilon of zero to zero.
func Clean(v float64) float64 {
	if math.Abs(v) < Epsilon {
		return 0
	}
	return v
}
