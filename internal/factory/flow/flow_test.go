package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/factory-planner/internal/factory/catalog/catalogtest"
	"github.com/rsned/factory-planner/internal/factory/lp"
	"github.com/rsned/factory-planner/pkg/factory"
)

func TestAllocateProportionally(t *testing.T) {
	got := Allocate(
		map[string]float64{"a": 30, "b": 10},
		map[string]float64{"x": 20, "y": 20},
	)

	want := []Allocation{
		{Source: "a", Sink: "x", Amount: 15},
		{Source: "a", Sink: "y", Amount: 15},
		{Source: "b", Sink: "x", Amount: 5},
		{Source: "b", Sink: "y", Amount: 5},
	}
	require.Len(t, got, len(want))
	var total float64
	for i, w := range want {
		assert.Equal(t, w.Source, got[i].Source)
		assert.Equal(t, w.Sink, got[i].Sink)
		assert.InDelta(t, w.Amount, got[i].Amount, 1e-12)
		total += got[i].Amount
	}
	assert.InDelta(t, 40, total, 1e-12)
}

func TestAllocateNoDemand(t *testing.T) {
	assert.Empty(t, Allocate(map[string]float64{"a": 1}, map[string]float64{}))
}

func TestBuildIronRods(t *testing.T) {
	c := catalogtest.Catalog(t)
	sol := lp.NewSolution(lp.Optimal, 60, map[string]float64{
		"resource:iron-ore":   -60,
		"item:iron-rod":       60,
		"recipe:iron-ingot":   2,
		"recipe:iron-rod":     4,
		"crafter:smelter":     2,
		"crafter:constructor": 4,
		factory.VarPower:      -24,
	})

	g := Build(c, sol, nil)
	assert.Len(t, g.Nodes, 4)
	assert.InDelta(t, -24, g.NetPower, 1e-12)
	assert.Zero(t, g.PowerOutput)

	rod, ok := g.Node("recipe:iron-rod")
	require.True(t, ok)
	assert.Equal(t, "Recipe: Iron Rod\n4x Constructor", rod.Label)

	ore := g.EdgesFor("resource:iron-ore")
	require.Len(t, ore, 1)
	assert.Equal(t, "resource:iron-ore", ore[0].From)
	assert.Equal(t, "recipe:iron-ingot", ore[0].To)
	assert.InDelta(t, 60, ore[0].Amount, 1e-9)
	assert.Equal(t, "60/m\nIron Ore", ore[0].Label)

	ingots := g.EdgesFor("item:iron-ingot")
	require.Len(t, ingots, 1)
	assert.Equal(t, "recipe:iron-rod", ingots[0].To)

	rods := g.EdgesFor("item:iron-rod")
	require.Len(t, rods, 1)
	assert.Equal(t, "recipe:iron-rod", rods[0].From)
	assert.Equal(t, "item:iron-rod", rods[0].To)

	dot := g.DOT()
	assert.Contains(t, dot, "digraph")
	assert.Contains(t, dot, `BGCOLOR="moccasin">Net Power</TD><TD>-24 MW`)
	assert.NotContains(t, dot, "Power Output")
}

func TestBuildPower(t *testing.T) {
	c := catalogtest.Catalog(t)
	sol := lp.NewSolution(lp.Optimal, 150, map[string]float64{
		"resource:coal":                    -30,
		"power-recipe:coal-generator:coal": 2,
		"generator:coal-generator":         2,
		factory.VarPower:                   150,
	})

	g := Build(c, sol, nil)
	assert.InDelta(t, 150, g.PowerOutput, 1e-12)

	power := g.EdgesFor("")
	require.Len(t, power, 1)
	assert.Equal(t, PowerNode, power[0].To)
	assert.Equal(t, "150 MW", power[0].Label)

	coal := g.EdgesFor("resource:coal")
	require.Len(t, coal, 1)
	assert.Equal(t, "power-recipe:coal-generator:coal", coal[0].To)
	assert.InDelta(t, 30, coal[0].Amount, 1e-12)

	dot := g.DOT()
	assert.Contains(t, dot, `BGCOLOR="lightblue">Power Output</TD><TD>150 MW`)
}

func TestBuildSkipsUnmatchedItems(t *testing.T) {
	c := catalogtest.Catalog(t)
	// Residue is produced but nothing consumes it and it is not an output.
	sol := lp.NewSolution(lp.Optimal, 0, map[string]float64{
		"resource:crude-oil": -30,
		"item:plastic":       20,
		"recipe:plastic":     1,
	})

	g := Build(c, sol, nil)
	assert.Empty(t, g.EdgesFor("item:heavy-oil-residue"))
	assert.Len(t, g.EdgesFor("item:plastic"), 1)
}
