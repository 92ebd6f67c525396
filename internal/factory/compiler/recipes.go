package compiler

import (
	"strings"

	"github.com/rsned/factory-planner/internal/factory/grammar"
	"github.com/rsned/factory-planner/internal/factory/query"
	"github.com/rsned/factory-planner/pkg/factory"
)

// compileRecipeFor lists the recipes producing an item, preferring the
// standard ones when any exist.
func (c *Compiler) compileRecipeFor(t *grammar.Tree) (*query.InfoQuery, error) {
	matches, err := c.resolve(t.Entity, "Could not parse item expression '%s'.", factory.KindItem)
	if err != nil {
		return nil, err
	}

	var all, standard []factory.Entity
	for _, m := range matches {
		for _, r := range c.catalog.RecipesForProduct(m.Var()) {
			all = append(all, r)
			if !r.Alternate {
				standard = append(standard, r)
			}
		}
	}
	if len(standard) > 0 {
		return query.NewInfoQuery(t.Raw, standard), nil
	}
	return query.NewInfoQuery(t.Raw, all), nil
}

func (c *Compiler) compileRecipesFor(t *grammar.Tree) (*query.InfoQuery, error) {
	matches, err := c.resolve(t.Entity, "Could not parse resource, item, crafter, or generator expression '%s'.",
		factory.KindResource, factory.KindItem, factory.KindCrafter, factory.KindGenerator)
	if err != nil {
		return nil, err
	}

	var out []factory.Entity
	for _, m := range matches {
		switch m.Kind() {
		case factory.KindResource, factory.KindItem:
			for _, r := range c.catalog.RecipesForProduct(m.Var()) {
				out = append(out, r)
			}
		case factory.KindCrafter:
			for _, r := range c.catalog.RecipesForCrafter(m.Var()) {
				out = append(out, r)
			}
		case factory.KindGenerator:
			for _, p := range c.catalog.PowerRecipesForGenerator(m.Var()) {
				out = append(out, p)
			}
		}
	}
	return query.NewInfoQuery(t.Raw, out), nil
}

func (c *Compiler) compileRecipesFrom(t *grammar.Tree) (*query.InfoQuery, error) {
	matches, err := c.resolve(t.Entity, "Could not parse resource or item expression '%s'.",
		factory.KindResource, factory.KindItem)
	if err != nil {
		return nil, err
	}

	var out []factory.Entity
	for _, m := range matches {
		for _, r := range c.catalog.RecipesForIngredient(m.Var()) {
			out = append(out, r)
		}
	}
	return query.NewInfoQuery(t.Raw, out), nil
}

func (c *Compiler) compileSingleRecipe(t *grammar.Tree) (*query.InfoQuery, error) {
	matches, err := c.resolve(t.Entity, "Could not parse recipe expression '%s'.", factory.KindRecipe)
	if err != nil {
		return nil, err
	}
	return query.NewInfoQuery(t.Raw, matches), nil
}

// compileRecipeCompare picks the base recipe for a single product: the only
// recipe, or the one sharing the item's slug.
func (c *Compiler) compileRecipeCompare(t *grammar.Tree) (*query.RecipeCompareQuery, error) {
	matches, err := c.resolve(t.Entity, "Could not parse compare recipes for expression '%s'.", factory.KindItem)
	if err != nil {
		return nil, err
	}
	if len(matches) > 1 {
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, m.HumanReadableName())
		}
		return nil, factory.NewErrorWithContext(factory.ErrCodeResolution,
			"Multiple items were matched:\n   "+strings.Join(names, "\n   ")+
				"\nPlease repeat the command with a more specific item name.",
			map[string]any{"expression": t.Entity, "matches": varsOf(matches)})
	}

	product, ok := matches[0].(*factory.Item)
	if !ok {
		return nil, factory.NewError(factory.ErrCodeInternal, "item expression resolved to "+matches[0].Var())
	}

	related := c.catalog.RecipesForProduct(product.Var())
	var base *factory.Recipe
	switch len(related) {
	case 0:
		return nil, factory.NewError(factory.ErrCodeCompilation,
			"Could not find any recipe that produces "+product.HumanReadableName())
	case 1:
		base, related = related[0], nil
	default:
		rest := make([]*factory.Recipe, 0, len(related)-1)
		for _, r := range related {
			if base == nil && r.Slug() == product.Slug() {
				base = r
				continue
			}
			rest = append(rest, r)
		}
		if base == nil {
			return nil, factory.NewError(factory.ErrCodeCompilation,
				"Could not find base recipe for "+product.HumanReadableName())
		}
		related = rest
	}

	return query.NewRecipeCompareQuery(t.Raw, product, base, related, t.ExcludeAlternates), nil
}

// compileEntityDetails prefers items and buildings over recipes.
func (c *Compiler) compileEntityDetails(t *grammar.Tree) (*query.InfoQuery, error) {
	matches := c.resolver.Resolve(t.Entity,
		factory.KindResource, factory.KindItem, factory.KindCrafter, factory.KindGenerator)
	if len(matches) > 0 {
		return query.NewInfoQuery(t.Raw, matches), nil
	}

	matches, err := c.resolve(t.Entity, "Could not parse entity expression '%s'.",
		factory.KindRecipe, factory.KindPowerRecipe)
	if err != nil {
		return nil, err
	}
	return query.NewInfoQuery(t.Raw, matches), nil
}
