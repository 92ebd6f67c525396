// Package query holds the compiled query values handed from the compiler to
// the solver and result layers.
package query

import (
	"github.com/rsned/factory-planner/pkg/factory"
)

// Query is a compiled query. The set of implementations is closed:
// *OptimizationQuery, *InfoQuery, *RecipeCompareQuery and *HelpQuery.
type Query interface {
	Raw() string
	Kind() string

	query()
}

// Query kinds, used for logging and metrics labels.
const (
	KindOptimization  = "optimization"
	KindInfo          = "info"
	KindRecipeCompare = "recipe-compare"
	KindHelp          = "help"
)

// HelpQuery asks for the usage text.
type HelpQuery struct {
	raw string
}

// NewHelpQuery returns a help query.
func NewHelpQuery(raw string) *HelpQuery { return &HelpQuery{raw: raw} }

func (q *HelpQuery) Raw() string  { return q.raw }
func (q *HelpQuery) Kind() string { return KindHelp }
func (*HelpQuery) query()         {}

// InfoQuery lists catalog entities.
type InfoQuery struct {
	raw      string
	entities []factory.Entity
}

// NewInfoQuery returns an info query over entities, dropping repeated vars
// and keeping first-seen order.
func NewInfoQuery(raw string, entities []factory.Entity) *InfoQuery {
	seen := make(map[string]bool, len(entities))
	out := make([]factory.Entity, 0, len(entities))
	for _, e := range entities {
		if seen[e.Var()] {
			continue
		}
		seen[e.Var()] = true
		out = append(out, e)
	}
	return &InfoQuery{raw: raw, entities: out}
}

func (q *InfoQuery) Raw() string  { return q.raw }
func (q *InfoQuery) Kind() string { return KindInfo }
func (*InfoQuery) query()         {}

// Entities returns a copy of the matched entities.
func (q *InfoQuery) Entities() []factory.Entity {
	return append([]factory.Entity(nil), q.entities...)
}

// RecipeCompareQuery compares the recipes that produce one item.
type RecipeCompareQuery struct {
	raw               string
	product           *factory.Item
	base              *factory.Recipe
	related           []*factory.Recipe
	excludeAlternates bool
}

// NewRecipeCompareQuery returns a compare query. related must not contain
// base.
func NewRecipeCompareQuery(raw string, product *factory.Item, base *factory.Recipe, related []*factory.Recipe, excludeAlternates bool) *RecipeCompareQuery {
	return &RecipeCompareQuery{
		raw:               raw,
		product:           product,
		base:              base,
		related:           append([]*factory.Recipe(nil), related...),
		excludeAlternates: excludeAlternates,
	}
}

func (q *RecipeCompareQuery) Raw() string  { return q.raw }
func (q *RecipeCompareQuery) Kind() string { return KindRecipeCompare }
func (*RecipeCompareQuery) query()         {}

func (q *RecipeCompareQuery) Product() *factory.Item      { return q.product }
func (q *RecipeCompareQuery) BaseRecipe() *factory.Recipe { return q.base }
func (q *RecipeCompareQuery) ExcludeAlternates() bool     { return q.excludeAlternates }

// RelatedRecipes returns a copy of the recipes compared against the base.
func (q *RecipeCompareQuery) RelatedRecipes() []*factory.Recipe {
	return append([]*factory.Recipe(nil), q.related...)
}
