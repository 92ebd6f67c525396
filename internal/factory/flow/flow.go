// Package flow reconstructs which producer feeds which consumer from the
// aggregate quantities of an optimal solution.
package flow

import (
	"log/slog"
	"maps"
	"math"
	"slices"

	"github.com/rsned/factory-planner/internal/factory/catalog"
	"github.com/rsned/factory-planner/internal/factory/lp"
	"github.com/rsned/factory-planner/internal/factory/optimizer"
	"github.com/rsned/factory-planner/pkg/factory"
)

// PowerNode is the ID of the aggregate power node.
const PowerNode = "power"

// Node is an active item, recipe or power recipe.
type Node struct {
	ID     string
	Name   string
	Kind   factory.Kind
	Amount float64
	Label  string
}

// Edge carries Amount per minute of Item from one node to another. Power
// edges have an empty Item and carry MW.
type Edge struct {
	From   string
	To     string
	Item   string
	Amount float64
	Label  string
}

// Graph is the flow of one optimal solution.
type Graph struct {
	Nodes       []Node
	Edges       []Edge
	PowerOutput float64
	NetPower    float64
}

// Allocation is the share of one source's supply routed to one sink.
type Allocation struct {
	Source string
	Sink   string
	Amount float64
}

// Allocate splits every source's supply across the sinks in proportion to
// each sink's share of the total demand. Results are ordered by source, then
// sink.
func Allocate(sources, sinks map[string]float64) []Allocation {
	var total float64
	for _, amount := range sinks {
		total += amount
	}
	if total == 0 {
		return nil
	}

	sinkIDs := slices.Sorted(maps.Keys(sinks))
	var out []Allocation
	for _, source := range slices.Sorted(maps.Keys(sources)) {
		multiplier := sources[source] / total
		for _, sink := range sinkIDs {
			out = append(out, Allocation{Source: source, Sink: sink, Amount: multiplier * sinks[sink]})
		}
	}
	return out
}

type targets map[string]map[string]float64

func (t targets) add(item, node string, amount float64) {
	if t[item] == nil {
		t[item] = make(map[string]float64)
	}
	t[item][node] += amount
}

// Build reconstructs the flow graph of sol. Items that only have sources or
// only have sinks produce no item edges.
func Build(c *catalog.Catalog, sol *lp.Solution, logger *slog.Logger) *Graph {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Graph{NetPower: optimizer.Clean(sol.Value(factory.VarPower))}
	sources, sinks := targets{}, targets{}

	for _, it := range c.Items() {
		v := optimizer.Clean(sol.Value(it.Var()))
		if v == 0 {
			continue
		}
		g.addNode(it, math.Abs(v), factory.FormatAmount(math.Abs(v))+"/m")
		if v < 0 {
			sources.add(it.Var(), it.Var(), -v)
		} else {
			sinks.add(it.Var(), it.Var(), v)
		}
	}

	for _, r := range c.Recipes() {
		v := optimizer.Clean(sol.Value(r.Var()))
		if v == 0 {
			continue
		}
		g.addNode(r, v, factory.FormatAmount(v)+"x "+r.CrafterName)
		for _, in := range r.Ingredients {
			sinks.add(in.Item, r.Var(), v*in.PerMinute)
		}
		for _, p := range r.Products {
			sources.add(p.Item, r.Var(), v*p.PerMinute)
		}
	}

	for _, p := range c.PowerRecipes() {
		v := optimizer.Clean(sol.Value(p.Var()))
		if v == 0 {
			continue
		}
		g.addNode(p, v, factory.FormatAmount(v)+"x "+p.GeneratorName)
		sinks.add(p.FuelItem, p.Var(), v*p.FuelPerMinute)

		production := v * p.PowerProduction
		g.PowerOutput += production
		g.Edges = append(g.Edges, Edge{
			From:   p.Var(),
			To:     PowerNode,
			Amount: production,
			Label:  factory.FormatAmount(production) + " MW",
		})
	}

	for _, it := range c.Items() {
		itemSources, ok := sources[it.Var()]
		if !ok {
			continue
		}
		itemSinks, ok := sinks[it.Var()]
		if !ok {
			logger.Debug("item has sources but no sinks", "item", it.Var())
			continue
		}
		for _, a := range Allocate(itemSources, itemSinks) {
			g.Edges = append(g.Edges, Edge{
				From:   a.Source,
				To:     a.Sink,
				Item:   it.Var(),
				Amount: a.Amount,
				Label:  factory.FormatAmount(a.Amount) + "/m\n" + it.Name,
			})
		}
	}

	return g
}

func (g *Graph) addNode(e factory.Entity, amount float64, detail string) {
	g.Nodes = append(g.Nodes, Node{
		ID:     e.Var(),
		Name:   e.HumanReadableName(),
		Kind:   e.Kind(),
		Amount: amount,
		Label:  e.HumanReadableName() + "\n" + detail,
	})
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// EdgesFor returns the edges carrying item, in graph order.
func (g *Graph) EdgesFor(item string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Item == item {
			out = append(out, e)
		}
	}
	return out
}
