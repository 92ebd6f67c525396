package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/factory-planner/pkg/factory"
)

func TestBuilderFreezes(t *testing.T) {
	b := NewBuilder("produce only 60 iron rods")
	b.Eq("item:iron-rod", 60)
	b.SetStrict(StrictOutputs)
	b.SetObjective(false, map[string]float64{factory.VarUnweightedResources: -1})

	q := b.Build()
	b.Eq("item:iron-rod", 30)
	b.Ge("item:screw", 0)

	assert.Equal(t, map[string]float64{"item:iron-rod": 60}, q.EqConstraints())
	assert.Empty(t, q.GeConstraints())
	assert.True(t, q.StrictOutputs())
	assert.False(t, q.StrictInputs())

	eq := q.EqConstraints()
	eq["item:iron-rod"] = 1
	assert.InDelta(t, 60, q.EqConstraints()["item:iron-rod"], 1e-9)
}

func TestBuilderLastWriteWins(t *testing.T) {
	b := NewBuilder("")
	b.Ge("recipe:screw", 0)
	b.Eq("recipe:screw", 5)
	b.Eq("recipe:screw", 0)

	q := b.Build()
	assert.Equal(t, map[string]float64{"recipe:screw": 0}, q.EqConstraints())
	assert.Equal(t, map[string]float64{"recipe:screw": 0}, q.GeConstraints())
	assert.True(t, q.Constrained("recipe:screw"))
	assert.False(t, q.Constrained("recipe:wire"))
}

func TestBuilderHasObjective(t *testing.T) {
	b := NewBuilder("")
	assert.False(t, b.HasObjective())

	b.SetObjective(true, nil)
	assert.True(t, b.HasObjective())
	assert.Empty(t, b.Build().ObjectiveCoefficients())
}

func TestOptimizationString(t *testing.T) {
	b := NewBuilder("produce only 60 iron rods from ? iron ore")
	b.Eq("item:iron-rod", 60)
	b.SetObjective(false, map[string]float64{"resource:iron-ore": -1})
	b.Ge("recipe:iron-rod", 0)
	b.Le("resource:coal", 0)
	b.SetStrict(StrictOutputs)
	b.SetStrict(StrictRecipes)

	assert.Equal(t, `minimize -1 resource:iron-ore
item:iron-rod == 60
recipe:iron-rod >= 0
resource:coal <= 0
strict recipes
strict outputs`, b.Build().String())

	b.SetObjective(true, map[string]float64{"power": 1})
	b.SetHasPowerOutput()
	s := b.Build().String()
	assert.Contains(t, s, "maximize 1 power\n")
	assert.Contains(t, s, "power output")
}

func TestInfoQueryDeduplicates(t *testing.T) {
	rod := &factory.Item{ID: "iron-rod", Name: "Iron Rod"}
	screw := &factory.Item{ID: "screw", Name: "Screw"}

	q := NewInfoQuery("x", []factory.Entity{rod, screw, rod})
	require.Len(t, q.Entities(), 2)
	assert.Equal(t, "item:iron-rod", q.Entities()[0].Var())
	assert.Equal(t, KindInfo, q.Kind())
}

func TestRecipeCompareQueryCopies(t *testing.T) {
	base := &factory.Recipe{ID: "screw"}
	related := []*factory.Recipe{{ID: "alternate:cast-screw"}}

	q := NewRecipeCompareQuery("compare recipes for screws", &factory.Item{ID: "screw"}, base, related, true)
	related[0] = nil

	require.Len(t, q.RelatedRecipes(), 1)
	assert.NotNil(t, q.RelatedRecipes()[0])
	assert.Same(t, base, q.BaseRecipe())
	assert.True(t, q.ExcludeAlternates())
}
