// Package compiler turns parsed query trees into typed queries, resolving
// entity expressions against the catalog on the way.
package compiler

import (
	"fmt"
	"log/slog"

	"github.com/rsned/factory-planner/internal/factory/catalog"
	"github.com/rsned/factory-planner/internal/factory/grammar"
	"github.com/rsned/factory-planner/internal/factory/query"
	"github.com/rsned/factory-planner/internal/factory/resolve"
	"github.com/rsned/factory-planner/pkg/factory"
)

// Compiler compiles query text. It holds no per-request state and is safe
// for concurrent use.
type Compiler struct {
	grammar  *grammar.Grammar
	resolver *resolve.Resolver
	catalog  *catalog.Catalog
	logger   *slog.Logger
}

// New creates a compiler. A nil logger uses slog.Default().
func New(g *grammar.Grammar, r *resolve.Resolver, c *catalog.Catalog, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{grammar: g, resolver: r, catalog: c, logger: logger}
}

// Compile parses and compiles raw. Errors are *factory.Error values with a
// user-visible message.
func (c *Compiler) Compile(raw string) (query.Query, error) {
	tree, err := c.grammar.Parse(raw)
	if err != nil {
		return nil, err
	}
	return c.CompileTree(tree)
}

// CompileTree compiles an already parsed tree.
func (c *Compiler) CompileTree(t *grammar.Tree) (query.Query, error) {
	switch t.Shape {
	case grammar.ShapeHelp:
		return query.NewHelpQuery(t.Raw), nil
	case grammar.ShapeOptimization:
		return c.compileOptimization(t)
	case grammar.ShapeRecipeFor:
		return c.compileRecipeFor(t)
	case grammar.ShapeRecipesFor:
		return c.compileRecipesFor(t)
	case grammar.ShapeRecipesFrom:
		return c.compileRecipesFrom(t)
	case grammar.ShapeSingleRecipe:
		return c.compileSingleRecipe(t)
	case grammar.ShapeCompare:
		return c.compileRecipeCompare(t)
	case grammar.ShapeEntityDetails:
		return c.compileEntityDetails(t)
	default:
		return nil, factory.NewError(factory.ErrCodeInternal, fmt.Sprintf("unsupported query shape %s", t.Shape))
	}
}

// resolve returns the matched entities or a resolution error built from
// format, which receives the expression.
func (c *Compiler) resolve(expr, format string, kinds ...factory.Kind) ([]factory.Entity, error) {
	matches := c.resolver.Resolve(expr, kinds...)
	if len(matches) == 0 {
		return nil, c.resolver.NotFound(fmt.Sprintf(format, expr), expr, kinds...)
	}
	return matches, nil
}

func varsOf(entities []factory.Entity) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Var())
	}
	return out
}
