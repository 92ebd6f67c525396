package grammar

// Shape identifies which top-level query form matched.
type Shape int

const (
	ShapeHelp Shape = iota
	ShapeOptimization
	ShapeRecipesFor
	ShapeRecipeFor
	ShapeRecipesFrom
	ShapeSingleRecipe
	ShapeCompare
	ShapeEntityDetails
)

func (s Shape) String() string {
	switch s {
	case ShapeHelp:
		return "help"
	case ShapeOptimization:
		return "optimization"
	case ShapeRecipesFor:
		return "recipes-for"
	case ShapeRecipeFor:
		return "recipe-for"
	case ShapeRecipesFrom:
		return "recipes-from"
	case ShapeSingleRecipe:
		return "single-recipe"
	case ShapeCompare:
		return "recipe-compare"
	case ShapeEntityDetails:
		return "entity-details"
	default:
		return "unknown"
	}
}

// ValueKind is the kind of value token on an output or input clause.
type ValueKind int

const (
	// ValueAny is "_", "any" or an omitted value.
	ValueAny ValueKind = iota
	// ValueObjective is "?".
	ValueObjective
	// ValueNumber is an integer.
	ValueNumber
)

// Value is the value token of a clause.
type Value struct {
	Kind   ValueKind
	Number int
}

// Literal nouns, normalized to their variable names.
const (
	LiteralPower               = "power"
	LiteralTickets             = "tickets"
	LiteralSpace               = "space"
	LiteralUnweightedResources = "unweighted-resources"
	LiteralWeightedResources   = "weighted-resources"
	LiteralAlternateRecipes    = "alternate-recipes"
)

// Clause is one output, input, include or exclude entry. Exactly one of
// Literal, Entity and Byproducts is set.
type Clause struct {
	Strict     bool
	Value      Value
	Literal    string
	Entity     string
	Byproducts bool
}

// Tree is the parse result of one query.
type Tree struct {
	Shape Shape
	Raw   string

	// Optimization clauses, in source order.
	Outputs  []Clause
	Inputs   []Clause
	Includes []Clause
	Excludes []Clause

	// Entity is the free-text expression of recipe, compare and
	// entity-details queries.
	Entity            string
	ExcludeAlternates bool
}
