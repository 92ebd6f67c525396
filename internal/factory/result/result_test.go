package result

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/factory-planner/internal/factory/catalog/catalogtest"
	"github.com/rsned/factory-planner/internal/factory/compare"
	"github.com/rsned/factory-planner/internal/factory/lp"
	"github.com/rsned/factory-planner/internal/factory/query"
	"github.com/rsned/factory-planner/pkg/factory"
)

func TestReactions(t *testing.T) {
	r, ok := NumberReaction(3)
	require.True(t, ok)
	n, ok := r.Number()
	require.True(t, ok)
	assert.Equal(t, 3, n)
	assert.Equal(t, "3", r.Name())

	_, ok = NumberReaction(10)
	assert.False(t, ok)
	_, ok = ReactionNext.Number()
	assert.False(t, ok)

	for _, name := range []string{"prev", "next", "info", "1", "9"} {
		r, ok := ParseReaction(name)
		require.True(t, ok, name)
		assert.Equal(t, name, r.Name())
	}
	_, ok = ParseReaction("0")
	assert.False(t, ok)
	_, ok = ParseReaction("later")
	assert.False(t, ok)
}

func TestBreadcrumbs(t *testing.T) {
	b := NewBreadcrumbs("recipes for iron ingot")
	assert.Equal(t, 1, b.Page())
	assert.False(t, b.HasPrevQuery())

	b.GotoNextPage()
	b.GotoNextPage()
	assert.Equal(t, "recipes for iron ingot [page 3]", b.String())
	b.GotoPrevPage()
	assert.Equal(t, 2, b.Page())

	b.AddQuery("Recipe: Iron Rod")
	assert.Equal(t, "recipes for iron ingot [page 2] > Recipe: Iron Rod", b.String())
	assert.Equal(t, 1, b.Page())
	assert.True(t, b.HasPrevQuery())

	b.GotoPrevPage()
	assert.Equal(t, 1, b.Page())

	b.GotoPrevQuery()
	assert.Equal(t, "recipes for iron ingot", b.PrimaryQuery())
	assert.Equal(t, 2, b.Page())
	assert.Len(t, b.Crumbs(), 1)

	var nilTrail *Breadcrumbs
	assert.Equal(t, "", nilTrail.String())
	assert.Equal(t, 1, nilTrail.Page())
}

func TestHelpAndError(t *testing.T) {
	b := NewBreadcrumbs("help")

	m := Help{}.Message(b)
	assert.Equal(t, "help", m.Content)
	assert.Equal(t, "Help", m.Embed.Title)
	assert.Contains(t, m.Embed.Description, "produce 60 iron rods")

	e := Error{Text: "Could not parse item expression 'unobtanium'."}
	assert.Equal(t, e.Text, e.String())
	m = e.Message(b)
	assert.Equal(t, "Error", m.Embed.Title)
	assert.Equal(t, e.Text, m.Embed.Description)

	_, ok := e.HandleReaction(ReactionNext, b)
	assert.False(t, ok)
}

func TestMessageContentCap(t *testing.T) {
	assert.Equal(t, TooLong, newMessage(strings.Repeat("x", MaxContentLength+1)).Content)
	assert.Len(t, newMessage(strings.Repeat("x", MaxContentLength)).Content, MaxContentLength)

	arrows := strings.Repeat("→", MaxContentLength)
	assert.Equal(t, arrows, newMessage(arrows).Content)
	assert.Equal(t, TooLong, newMessage(arrows+"→").Content)
}

func items(t *testing.T) []factory.Entity {
	t.Helper()
	var out []factory.Entity
	for _, it := range catalogtest.Catalog(t).Items() {
		out = append(out, it)
	}
	return out
}

func TestInfoSingle(t *testing.T) {
	it := items(t)[0]
	r := NewInfo([]factory.Entity{it})

	assert.Equal(t, it.Details(), r.String())
	m := r.Message(NewBreadcrumbs("coal"))
	assert.Equal(t, it.HumanReadableName(), m.Embed.Title)
	assert.Equal(t, []Reaction{ReactionPrevious}, m.Reactions)
}

func TestInfoEmpty(t *testing.T) {
	m := NewInfo(nil).Message(NewBreadcrumbs("nothing"))
	assert.Equal(t, "No matches found", m.Embed.Title)
}

func TestInfoPaging(t *testing.T) {
	all := items(t)
	require.Len(t, all, 13)
	r := NewInfo(all)
	b := NewBreadcrumbs(".*")
	assert.Equal(t, 2, r.Pages())

	lines := strings.Split(r.String(), "\n")
	assert.Len(t, lines, 13)
	assert.True(t, strings.Compare(lines[0], lines[1]) < 0)

	m := r.Message(b)
	assert.Equal(t, "Found 13 matches:", m.Embed.Title)
	assert.Equal(t, "Page 1 of 2", m.Embed.Footer)
	assert.Len(t, strings.Split(m.Embed.Description, "\n"), PageSize)
	assert.Equal(t, []Reaction{ReactionInfo, ReactionNext}, m.Reactions)

	_, ok := r.HandleReaction(ReactionNext, b)
	assert.False(t, ok)
	m = r.Message(b)
	assert.Equal(t, "Page 2 of 2", m.Embed.Footer)
	assert.Len(t, strings.Split(m.Embed.Description, "\n"), 4)
	assert.Equal(t, []Reaction{ReactionPrevious, ReactionInfo}, m.Reactions)
	assert.Equal(t, ".* [page 2]", m.Content)

	// Next on the last page is a no-op.
	r.HandleReaction(ReactionNext, b)
	assert.Equal(t, 2, b.Page())

	r.HandleReaction(ReactionInfo, b)
	m = r.Message(b)
	one, _ := NumberReaction(1)
	assert.Equal(t, []Reaction{one, mustNumber(t, 2), mustNumber(t, 3), mustNumber(t, 4)}, m.Reactions)
	assert.True(t, strings.HasPrefix(m.Embed.Description, "- "+string(one)+" "))

	// Out of range selectors do nothing.
	_, ok = r.HandleReaction(mustNumber(t, 9), b)
	assert.False(t, ok)

	q, ok := r.HandleReaction(one, b)
	require.True(t, ok)
	assert.Equal(t, r.Entities()[PageSize].HumanReadableName(), q)
	assert.Equal(t, q, b.PrimaryQuery())
	assert.Equal(t, ".* [page 2] > "+q, b.String())
}

func TestInfoPreviousReturnsToQuery(t *testing.T) {
	r := NewInfo(items(t))
	b := NewBreadcrumbs("first")
	b.AddQuery("second")

	b.GotoNextPage()
	_, ok := r.HandleReaction(ReactionPrevious, b)
	assert.False(t, ok)
	assert.Equal(t, 1, b.Page())

	q, ok := r.HandleReaction(ReactionPrevious, b)
	require.True(t, ok)
	assert.Equal(t, "first", q)
}

func mustNumber(t *testing.T, n int) Reaction {
	t.Helper()
	r, ok := NumberReaction(n)
	require.True(t, ok)
	return r
}

func TestOptimizationCannedTexts(t *testing.T) {
	c := catalogtest.Catalog(t)
	q := query.NewBuilder("produce 60 iron rods").Build()

	tests := []struct {
		status lp.Status
		want   string
	}{
		{lp.Infeasible, InfeasibleText},
		{lp.Unbounded, UnboundedText},
		{lp.NotSolved, NoSolutionText},
	}
	for _, tt := range tests {
		r := NewOptimization(c, q, lp.NewSolution(tt.status, 0, nil), nil)
		assert.Equal(t, tt.want, r.String())
		assert.False(t, r.HasSolution())
		assert.Nil(t, r.Graph())

		m := r.Message(NewBreadcrumbs("produce 60 iron rods"))
		assert.Equal(t, tt.want, m.Embed.Title)
		assert.Nil(t, m.Attachment)
	}
}

func TestOptimizationReport(t *testing.T) {
	c := catalogtest.Catalog(t)
	b := query.NewBuilder("produce 60 iron rods")
	b.Eq("item:iron-rod", 60)
	b.SetObjective(false, map[string]float64{factory.VarUnweightedResources: -1})
	sol := lp.NewSolution(lp.Optimal, 60, map[string]float64{
		"resource:iron-ore":   -60,
		"item:iron-rod":       60,
		"recipe:iron-ingot":   2,
		"recipe:iron-rod":     4,
		"crafter:smelter":     2,
		"crafter:constructor": 4,
		factory.VarPower:      -24,
	})

	r := NewOptimization(c, b.Build(), sol, nil)
	require.True(t, r.HasSolution())

	text := r.String()
	assert.Contains(t, text, "=== OPTIMAL SOLUTION FOUND ===")
	assert.Contains(t, text, "INPUT\nIron Ore: 60/m\n")
	assert.Contains(t, text, "OUTPUT\nIron Rod: 60/m\n")
	assert.Contains(t, text, "RECIPES\nRecipe: Iron Ingot: 2\nRecipe: Iron Rod: 4\n")
	assert.Contains(t, text, "CRAFTERS\nConstructor: 4\nSmelter: 2\n")
	assert.NotContains(t, text, "GENERATORS")
	assert.Contains(t, text, "NET POWER\n-24 MW")
	assert.True(t, strings.HasSuffix(text, "OBJECTIVE VALUE\n60"))

	m := r.Message(NewBreadcrumbs("produce 60 iron rods"))
	assert.Equal(t, "Optimization Query", m.Embed.Title)
	names := make([]string, 0, len(m.Embed.Fields))
	for _, f := range m.Embed.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Inputs", "Outputs", "Recipes", "Buildings"}, names)
	assert.Equal(t, "Constructor: 4\nSmelter: 2", m.Embed.Fields[3].Value)
	require.NotNil(t, m.Attachment)
	assert.Equal(t, GraphFilename, m.Attachment.Name)
	assert.Contains(t, m.Attachment.Content, "digraph")
}

func TestRecipeCompareTooLong(t *testing.T) {
	c := catalogtest.Catalog(t)
	screw, ok := c.Item("item:screw")
	require.True(t, ok)
	base, ok := c.Recipe("recipe:screw")
	require.True(t, ok)

	metrics := compare.Metrics{ResourceRequirements: 1, Inputs: map[string]float64{"resource:iron-ore": 1}, PowerConsumption: 1, Complexity: 1}
	cmp := &compare.Comparison{Product: screw, Base: compare.Stats{Recipe: base, Unweighted: metrics, Weighted: metrics}}

	short, err := NewRecipeCompare(cmp)
	require.NoError(t, err)
	assert.Contains(t, short.String(), "All recipes that produce Screw")
	assert.Contains(t, short.String(), "Raw Inputs for 1/m Screw")
	m := short.Message(NewBreadcrumbs("compare recipes for screws"))
	assert.Contains(t, m.Content, "```")

	for i := range 40 {
		r := &factory.Recipe{ID: fmt.Sprintf("alternate:screw-%d", i), Name: fmt.Sprintf("Recipe: Alternate: Screw Variant %d", i)}
		cmp.Related = append(cmp.Related, compare.Related{
			Stats: compare.Stats{Recipe: r, Unweighted: metrics, Weighted: metrics},
			UnweightedDeltas: compare.MetricDeltas{
				Inputs: map[string]compare.Delta{"resource:iron-ore": compare.NewDelta(1, 1)},
			},
		})
	}
	long, err := NewRecipeCompare(cmp)
	require.NoError(t, err)
	assert.Greater(t, len(long.String()), MaxContentLength)
	assert.Equal(t, TooLong, long.Message(NewBreadcrumbs("compare recipes for screws")).Content)
}
