package query

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Strictness flags. A strict category admits only the vars the query names.
type Strictness int

const (
	StrictCrafters Strictness = iota
	StrictGenerators
	StrictRecipes
	StrictPowerRecipes
	StrictInputs
	StrictOutputs
)

var strictNames = map[Strictness]string{
	StrictCrafters:     "crafters",
	StrictGenerators:   "generators",
	StrictRecipes:      "recipes",
	StrictPowerRecipes: "power recipes",
	StrictInputs:       "inputs",
	StrictOutputs:      "outputs",
}

func (s Strictness) String() string {
	if name, ok := strictNames[s]; ok {
		return name
	}
	return "unknown"
}

// OptimizationQuery is a compiled optimization request. It is immutable;
// accessors return copies.
type OptimizationQuery struct {
	raw            string
	maximize       bool
	objective      map[string]float64
	eq             map[string]float64
	ge             map[string]float64
	le             map[string]float64
	strict         [StrictOutputs + 1]bool
	hasPowerOutput bool
}

func (q *OptimizationQuery) Raw() string  { return q.raw }
func (q *OptimizationQuery) Kind() string { return KindOptimization }
func (*OptimizationQuery) query()         {}

// MaximizeObjective reports whether the objective is maximized.
func (q *OptimizationQuery) MaximizeObjective() bool { return q.maximize }

// ObjectiveCoefficients returns the objective as var → coefficient.
func (q *OptimizationQuery) ObjectiveCoefficients() map[string]float64 {
	return maps.Clone(q.objective)
}

// EqConstraints returns var == k constraints.
func (q *OptimizationQuery) EqConstraints() map[string]float64 { return maps.Clone(q.eq) }

// GeConstraints returns var >= k constraints.
func (q *OptimizationQuery) GeConstraints() map[string]float64 { return maps.Clone(q.ge) }

// LeConstraints returns var <= k constraints.
func (q *OptimizationQuery) LeConstraints() map[string]float64 { return maps.Clone(q.le) }

// Strict reports whether a strictness flag is set.
func (q *OptimizationQuery) Strict(s Strictness) bool { return q.strict[s] }

func (q *OptimizationQuery) StrictCrafters() bool     { return q.strict[StrictCrafters] }
func (q *OptimizationQuery) StrictGenerators() bool   { return q.strict[StrictGenerators] }
func (q *OptimizationQuery) StrictRecipes() bool      { return q.strict[StrictRecipes] }
func (q *OptimizationQuery) StrictPowerRecipes() bool { return q.strict[StrictPowerRecipes] }
func (q *OptimizationQuery) StrictInputs() bool       { return q.strict[StrictInputs] }
func (q *OptimizationQuery) StrictOutputs() bool      { return q.strict[StrictOutputs] }

// HasPowerOutput reports whether power was requested as an output.
func (q *OptimizationQuery) HasPowerOutput() bool { return q.hasPowerOutput }

// Constrained reports whether any constraint map mentions v.
func (q *OptimizationQuery) Constrained(v string) bool {
	_, eq := q.eq[v]
	_, ge := q.ge[v]
	_, le := q.le[v]
	return eq || ge || le
}

// String renders the compiled intent: the objective, one sorted line per
// constraint, then the strictness flags.
func (q *OptimizationQuery) String() string {
	var b strings.Builder

	if q.maximize {
		b.WriteString("maximize ")
	} else {
		b.WriteString("minimize ")
	}
	terms := make([]string, 0, len(q.objective))
	for _, v := range slices.Sorted(maps.Keys(q.objective)) {
		terms = append(terms, formatNumber(q.objective[v])+" "+v)
	}
	b.WriteString(strings.Join(terms, " + "))
	b.WriteString("\n")

	var lines []string
	for v, k := range q.eq {
		lines = append(lines, v+" == "+formatNumber(k))
	}
	for v, k := range q.ge {
		lines = append(lines, v+" >= "+formatNumber(k))
	}
	for v, k := range q.le {
		lines = append(lines, v+" <= "+formatNumber(k))
	}
	slices.Sort(lines)
	for _, line := range lines {
		b.WriteString(line + "\n")
	}

	for s := StrictCrafters; s <= StrictOutputs; s++ {
		if q.strict[s] {
			b.WriteString("strict " + s.String() + "\n")
		}
	}
	if q.hasPowerOutput {
		b.WriteString("power output\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Builder accumulates clause results. Within each constraint map a later
// write to the same var replaces the earlier one.
type Builder struct {
	q            OptimizationQuery
	hasObjective bool
}

// NewBuilder starts a query for raw.
func NewBuilder(raw string) *Builder {
	return &Builder{q: OptimizationQuery{
		raw:       raw,
		objective: make(map[string]float64),
		eq:        make(map[string]float64),
		ge:        make(map[string]float64),
		le:        make(map[string]float64),
	}}
}

// HasObjective reports whether SetObjective was called, even with no
// coefficients.
func (b *Builder) HasObjective() bool { return b.hasObjective }

// SetObjective replaces the objective.
func (b *Builder) SetObjective(maximize bool, coefficients map[string]float64) {
	b.hasObjective = true
	b.q.maximize = maximize
	b.q.objective = maps.Clone(coefficients)
}

// Eq adds v == k.
func (b *Builder) Eq(v string, k float64) { b.q.eq[v] = k }

// Ge adds v >= k.
func (b *Builder) Ge(v string, k float64) { b.q.ge[v] = k }

// Le adds v <= k.
func (b *Builder) Le(v string, k float64) { b.q.le[v] = k }

// HasEq reports whether v already has an equality constraint.
func (b *Builder) HasEq(v string) bool {
	_, ok := b.q.eq[v]
	return ok
}

// HasGe reports whether v already has a lower bound.
func (b *Builder) HasGe(v string) bool {
	_, ok := b.q.ge[v]
	return ok
}

// SetStrict sets a strictness flag.
func (b *Builder) SetStrict(s Strictness) { b.q.strict[s] = true }

// SetHasPowerOutput marks power as a requested output.
func (b *Builder) SetHasPowerOutput() { b.q.hasPowerOutput = true }

// Build returns the frozen query. The builder may keep being used; later
// changes do not affect queries already built.
func (b *Builder) Build() *OptimizationQuery {
	q := b.q
	q.objective = maps.Clone(b.q.objective)
	q.eq = maps.Clone(b.q.eq)
	q.ge = maps.Clone(b.q.ge)
	q.le = maps.Clone(b.q.le)
	return &q
}
