// Package grammar parses query text into a syntax tree. It never looks at
// the catalog; entity expressions are returned as free text.
package grammar

import (
	"fmt"
	"strings"

	"github.com/rsned/factory-planner/pkg/factory"
)

// Grammar is an immutable query parser. Build it once with New and share it.
type Grammar struct {
	shapes []shapeParser
}

type shapeParser struct {
	shape Shape
	parse parser[*Tree]
}

// New builds the query grammar.
func New() *Grammar {
	var (
		outputKw  = oneOf("produce", "make", "create", "output")
		inputKw   = oneOf("from", "input")
		includeKw = oneOf("using", "with")
		excludeKw = oneOf("without", "excluding")
		andKw     = alt(keyword("and"), constant(symbol(tokPlus), "+"))
		orKw      = oneOf("nor", "or", "and")
		recipeKw  = keyword("recipe")
		recipesKw = keyword("recipes")
		forKw     = keyword("for")
	)

	entityEnd := alt(outputKw, inputKw, includeKw, excludeKw, andKw, orKw, recipeKw, recipesKw)
	entity := phrase(entityEnd)

	value := alt(
		constant(symbol(tokQuestion), Value{Kind: ValueObjective}),
		mapTo(symbol(tokInt), func(t token) Value { return Value{Kind: ValueNumber, Number: t.num} }),
		constant(opt(alt(keyword("any"), constant(symbol(tokUnderscore), "_"))), Value{Kind: ValueAny}),
	)
	strict := mapTo(opt(keyword("only")), func(o option[string]) bool { return o.OK })

	literal := func(p parser[string], name string) parser[Clause] {
		return constant(p, Clause{Literal: name})
	}
	entityClause := mapTo(entity, func(s string) Clause { return Clause{Entity: s} })

	outputTarget := alt(
		literal(keyword("power"), LiteralPower),
		literal(keyword("tickets"), LiteralTickets),
		entityClause,
	)
	inputTarget := alt(
		literal(keyword("power"), LiteralPower),
		literal(keyword("space"), LiteralSpace),
		literal(keyword("resources"), LiteralUnweightedResources),
		literal(keyword("unweighted", "resources"), LiteralUnweightedResources),
		literal(keyword("weighted", "resources"), LiteralWeightedResources),
		entityClause,
	)
	includeTarget := alt(
		literal(keyword("space"), LiteralSpace),
		entityClause,
	)
	excludeTarget := alt(
		literal(keyword("alternate", "recipes"), LiteralAlternateRecipes),
		constant(keyword("byproducts"), Clause{Byproducts: true}),
		entityClause,
	)

	// [only] [value] target
	valued := func(target parser[Clause]) parser[Clause] {
		return func(st *state, pos int) (Clause, int, bool) {
			c := begin(st, pos)
			isStrict := run(c, strict)
			v := run(c, value)
			cl := run(c, target)
			if !c.ok {
				return Clause{}, pos, false
			}
			cl.Strict = isStrict
			cl.Value = v
			return cl, c.pos, true
		}
	}
	// [only] target
	include := parser[Clause](func(st *state, pos int) (Clause, int, bool) {
		c := begin(st, pos)
		isStrict := run(c, strict)
		cl := run(c, includeTarget)
		if !c.ok {
			return Clause{}, pos, false
		}
		cl.Strict = isStrict
		return cl, c.pos, true
	})

	outputs := sepBy1(valued(outputTarget), andKw)
	inputs := sepBy1(valued(inputTarget), andKw)
	includes := sepBy1(include, andKw)
	excludes := sepBy1(excludeTarget, orKw)

	g := &Grammar{}
	add := func(shape Shape, build func(c *cursor, t *Tree)) {
		g.shapes = append(g.shapes, shapeParser{shape: shape, parse: whole(shape, build)})
	}

	add(ShapeHelp, func(c *cursor, t *Tree) {
		run(c, keyword("help"))
	})
	add(ShapeOptimization, func(c *cursor, t *Tree) {
		run(c, outputKw)
		t.Outputs = run(c, outputs)
		t.Inputs = run(c, opt(prefixed(inputKw, inputs))).Value
		t.Includes = run(c, opt(prefixed(includeKw, includes))).Value
		t.Excludes = run(c, opt(prefixed(excludeKw, excludes))).Value
	})
	add(ShapeRecipesFor, func(c *cursor, t *Tree) {
		run(c, recipesKw)
		run(c, forKw)
		t.Entity = run(c, entity)
	})
	add(ShapeRecipesFor, func(c *cursor, t *Tree) {
		t.Entity = run(c, entity)
		run(c, recipesKw)
	})
	add(ShapeRecipeFor, func(c *cursor, t *Tree) {
		run(c, recipeKw)
		run(c, forKw)
		t.Entity = run(c, entity)
	})
	add(ShapeRecipeFor, func(c *cursor, t *Tree) {
		t.Entity = run(c, entity)
		run(c, recipeKw)
	})
	add(ShapeRecipesFrom, func(c *cursor, t *Tree) {
		run(c, recipesKw)
		run(c, oneOf("from", "using", "with"))
		t.Entity = run(c, entity)
	})
	add(ShapeSingleRecipe, func(c *cursor, t *Tree) {
		run(c, recipeKw)
		t.Entity = run(c, entity)
	})
	add(ShapeCompare, func(c *cursor, t *Tree) {
		run(c, keyword("compare"))
		run(c, recipesKw)
		run(c, forKw)
		t.Entity = run(c, entity)
		t.ExcludeAlternates = run(c, opt(prefixed(keyword("without"), keyword("alternate", "recipes")))).OK
	})
	add(ShapeEntityDetails, func(c *cursor, t *Tree) {
		t.Entity = run(c, entity)
	})

	return g
}

// whole wraps a shape so that it only matches the entire input.
func whole(shape Shape, build func(c *cursor, t *Tree)) parser[*Tree] {
	endOfInput := parser[struct{}](end)
	return func(st *state, pos int) (*Tree, int, bool) {
		c := begin(st, pos)
		t := &Tree{Shape: shape}
		build(c, t)
		run(c, endOfInput)
		if !c.ok {
			return nil, pos, false
		}
		return t, c.pos, true
	}
}

// Parse parses one query. Shapes are tried in priority order and the first
// one that matches the whole input wins. Parse is safe for concurrent use.
func (g *Grammar) Parse(raw string) (*Tree, error) {
	toks, lexErr := lex(raw)
	if lexErr != nil {
		return nil, parseError(raw, lexErr.offset, lexErr.msg)
	}

	st := newState(toks)
	for _, sp := range g.shapes {
		if t, _, ok := sp.parse(st, 0); ok {
			t.Raw = raw
			return t, nil
		}
	}

	offset, found := len(raw), "end of text"
	if st.furthest >= 0 && st.furthest < len(toks) {
		offset = toks[st.furthest].offset
		found = `"` + toks[st.furthest].text + `"`
	}
	return nil, parseError(raw, offset,
		fmt.Sprintf("Expected %s, found %s (at char %d)", st.expectation(), found, offset))
}

// parseError formats a failure with a caret under the offending character of
// the quoted query.
func parseError(raw string, offset int, detail string) error {
	msg := `"` + raw + `" ==> failed parse:` + "\n" +
		strings.Repeat(" ", offset+1) + "^\n" + detail
	return factory.NewErrorWithContext(factory.ErrCodeParse, msg, map[string]any{
		"query":  raw,
		"offset": offset,
	})
}
