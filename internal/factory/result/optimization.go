package result

import (
	"log/slog"
	"math"
	"strings"

	"github.com/rsned/factory-planner/internal/factory/catalog"
	"github.com/rsned/factory-planner/internal/factory/flow"
	"github.com/rsned/factory-planner/internal/factory/lp"
	"github.com/rsned/factory-planner/internal/factory/optimizer"
	"github.com/rsned/factory-planner/internal/factory/query"
	"github.com/rsned/factory-planner/pkg/factory"
)

// Explanations shown for solves that did not reach an optimum.
const (
	NoSolutionText = "No solution has been found."
	InfeasibleText = "Solution is infeasible, try removing a constraint or allowing a byproduct (e.g. rubber >= 0)"
	UnboundedText  = "Solution is unbounded, try adding a constraint or replacing '?' with a concrete value (e.g. 1000)"
)

// GraphFilename names the flow graph attachment.
const GraphFilename = "output.gv"

// Optimization is the outcome of an optimization query.
type Optimization struct {
	query      *query.OptimizationQuery
	solution   *lp.Solution
	extraction *optimizer.Extraction
	graph      *flow.Graph
}

// NewOptimization extracts the solution and builds its flow graph when the
// solve was optimal.
func NewOptimization(c *catalog.Catalog, q *query.OptimizationQuery, sol *lp.Solution, logger *slog.Logger) *Optimization {
	r := &Optimization{query: q, solution: sol}
	if sol.Status() == lp.Optimal {
		r.extraction = optimizer.Extract(c, sol)
		r.graph = flow.Build(c, sol, logger)
	}
	return r
}

// Status is the solver outcome.
func (r *Optimization) Status() lp.Status { return r.solution.Status() }

// Extraction returns the partitioned solution, or nil when not optimal.
func (r *Optimization) Extraction() *optimizer.Extraction { return r.extraction }

// Graph returns the flow graph, or nil when not optimal.
func (r *Optimization) Graph() *flow.Graph { return r.graph }

// HasSolution reports whether the solve was optimal with any nonzero var.
func (r *Optimization) HasSolution() bool {
	if r.extraction == nil {
		return false
	}
	ex := r.extraction
	return len(ex.Inputs)+len(ex.Outputs)+len(ex.Recipes)+len(ex.Crafters)+len(ex.Generators) > 0 || ex.NetPower != 0
}

func (r *Optimization) String() string {
	switch r.solution.Status() {
	case lp.Optimal:
		return r.report()
	case lp.Infeasible:
		return InfeasibleText
	case lp.Unbounded:
		return UnboundedText
	default:
		return NoSolutionText
	}
}

func (r *Optimization) report() string {
	ex := r.extraction
	out := []string{r.query.String(), "=== OPTIMAL SOLUTION FOUND ===", ""}
	section := func(title string, amounts []optimizer.Amount, suffix string) {
		if len(amounts) == 0 {
			return
		}
		out = append(out, title)
		out = append(out, amountLines(amounts, suffix)...)
		out = append(out, "")
	}
	section("INPUT", ex.Inputs, "/m")
	section("OUTPUT", ex.Outputs, "/m")
	section("RECIPES", ex.Recipes, "")
	section("CRAFTERS", ex.Crafters, "")
	section("GENERATORS", ex.Generators, "")
	out = append(out,
		"NET POWER", factory.FormatAmount(ex.NetPower)+" MW", "",
		"OBJECTIVE VALUE", factory.FormatAmount(ex.Objective))
	return strings.Join(out, "\n")
}

func amountLines(amounts []optimizer.Amount, suffix string) []string {
	lines := make([]string, 0, len(amounts))
	for _, a := range amounts {
		lines = append(lines, a.Name()+": "+factory.FormatAmount(math.Abs(a.Value))+suffix)
	}
	return lines
}

func (r *Optimization) Message(b *Breadcrumbs) *Message {
	m := newMessage(b.String())
	if r.solution.Status() != lp.Optimal {
		m.Embed = &Embed{Title: r.String()}
		return m
	}

	ex := r.extraction
	e := &Embed{Title: "Optimization Query"}
	e.AddField("Inputs", strings.Join(amountLines(ex.Inputs, "/m"), "\n"), true)
	e.AddField("Outputs", strings.Join(amountLines(ex.Outputs, "/m"), "\n"), true)
	e.AddField("Recipes", strings.Join(amountLines(ex.Recipes, ""), "\n"), false)
	buildings := append(amountLines(ex.Crafters, ""), amountLines(ex.Generators, "")...)
	e.AddField("Buildings", strings.Join(buildings, "\n"), true)
	m.Embed = e

	m.Attachment = &Attachment{Name: GraphFilename, Content: r.graph.DOT()}
	return m
}

func (*Optimization) HandleReaction(Reaction, *Breadcrumbs) (string, bool) { return "", false }
