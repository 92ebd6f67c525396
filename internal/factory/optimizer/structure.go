package optimizer

import (
	"github.com/rsned/factory-planner/internal/factory/catalog"
	"github.com/rsned/factory-planner/internal/factory/lp"
	"github.com/rsned/factory-planner/pkg/factory"
)

// Structure is the fixed linear system of a catalog: item flow balance,
// building counts, net power and the aggregate variables. It is built once
// and shared read-only between requests.
type Structure struct {
	vars []string
	rows []lp.Row
}

// NewStructure derives the structural rows of c. Every row has the form
// var − Σ terms = 0, so each defined var equals its linear combination.
func NewStructure(c *catalog.Catalog) *Structure {
	s := &Structure{}

	for _, it := range c.Items() {
		s.vars = append(s.vars, it.Var())
	}
	for _, r := range c.Recipes() {
		s.vars = append(s.vars, r.Var())
	}
	for _, p := range c.PowerRecipes() {
		s.vars = append(s.vars, p.Var())
	}
	for _, cr := range c.Crafters() {
		s.vars = append(s.vars, cr.Var())
	}
	for _, g := range c.Generators() {
		s.vars = append(s.vars, g.Var())
	}
	s.vars = append(s.vars, factory.AggregateVars()...)

	balance := make(map[string]map[string]float64, len(c.Items()))
	for _, it := range c.Items() {
		balance[it.Var()] = map[string]float64{it.Var(): 1}
	}
	crafters := make(map[string]map[string]float64, len(c.Crafters()))
	crafterPower := make(map[string]float64, len(c.Crafters()))
	for _, cr := range c.Crafters() {
		crafters[cr.Var()] = map[string]float64{cr.Var(): 1}
		crafterPower[cr.Var()] = cr.PowerMW
	}
	generators := make(map[string]map[string]float64, len(c.Generators()))
	for _, g := range c.Generators() {
		generators[g.Var()] = map[string]float64{g.Var(): 1}
	}

	power := map[string]float64{factory.VarPower: 1}
	alternates := map[string]float64{factory.VarAlternateRecipes: 1}

	for _, r := range c.Recipes() {
		rv := r.Var()
		for _, p := range r.Products {
			balance[p.Item][rv] -= p.PerMinute
		}
		for _, in := range r.Ingredients {
			balance[in.Item][rv] += in.PerMinute
		}
		crafters[r.Crafter][rv] = -1
		if mw := crafterPower[r.Crafter]; mw != 0 {
			power[rv] = mw
		}
		if r.Alternate {
			alternates[rv] = -1
		}
	}
	for _, p := range c.PowerRecipes() {
		pv := p.Var()
		balance[p.FuelItem][pv] += p.FuelPerMinute
		generators[p.Generator][pv] = -1
		power[pv] = -p.PowerProduction
	}

	unweighted := map[string]float64{factory.VarUnweightedResources: 1}
	weighted := map[string]float64{factory.VarWeightedResources: 1}
	tickets := map[string]float64{factory.VarTickets: 1}
	for _, it := range c.Items() {
		if it.Resource {
			unweighted[it.Var()] = -1
			weighted[it.Var()] = -it.ResourceWeight()
		}
		if it.SinkPoints > 0 {
			tickets[it.Var()] = -float64(it.SinkPoints)
		}
	}

	space := map[string]float64{factory.VarSpace: 1}
	for _, cr := range c.Crafters() {
		if cr.Area > 0 {
			space[cr.Var()] = cr.Area
		}
	}
	for _, g := range c.Generators() {
		if g.Area > 0 {
			space[g.Var()] = g.Area
		}
	}

	for _, it := range c.Items() {
		s.addRow("balance "+it.Var(), balance[it.Var()])
	}
	for _, cr := range c.Crafters() {
		s.addRow("count "+cr.Var(), crafters[cr.Var()])
	}
	for _, g := range c.Generators() {
		s.addRow("count "+g.Var(), generators[g.Var()])
	}
	s.addRow("net "+factory.VarPower, power)
	s.addRow("sum "+factory.VarUnweightedResources, unweighted)
	s.addRow("sum "+factory.VarWeightedResources, weighted)
	s.addRow("sum "+factory.VarSpace, space)
	s.addRow("sum "+factory.VarTickets, tickets)
	s.addRow("sum "+factory.VarAlternateRecipes, alternates)

	return s
}

func (s *Structure) addRow(name string, coeffs map[string]float64) {
	s.rows = append(s.rows, lp.Row{Name: name, Coeffs: coeffs, Sense: lp.EQ, RHS: 0})
}

// Vars returns every structural variable in declaration order.
func (s *Structure) Vars() []string { return append([]string(nil), s.vars...) }

// Rows returns the structural rows. The coefficient maps are shared and must
// not be modified.
func (s *Structure) Rows() []lp.Row { return append([]lp.Row(nil), s.rows...) }
