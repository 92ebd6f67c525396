// Package catalog provides the immutable in-memory game database that every
// query is resolved and solved against.
package catalog

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rsned/factory-planner/internal/factory/db"
	"github.com/rsned/factory-planner/pkg/factory"
)

// Catalog is a read-only view of every production entity. It is safe for
// concurrent use; slices returned by its methods must not be modified.
type Catalog struct {
	items        []*factory.Item
	crafters     []*factory.Crafter
	generators   []*factory.Generator
	recipes      []*factory.Recipe
	powerRecipes []*factory.PowerRecipe

	byVar        map[string]factory.Entity
	byProduct    map[string][]*factory.Recipe
	byIngredient map[string][]*factory.Recipe
	byCrafter    map[string][]*factory.Recipe
	byGenerator  map[string][]*factory.PowerRecipe
}

// Load reads the whole catalog from the database.
func Load(ctx context.Context, database *db.DB) (*Catalog, error) {
	var (
		items        []*factory.Item
		crafters     []*factory.Crafter
		generators   []*factory.Generator
		recipes      []*factory.Recipe
		powerRecipes []*factory.PowerRecipe
	)

	buildings := db.NewBuildingStore(database)
	recipeStore := db.NewRecipeStore(database)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = db.NewItemStore(database).GetAllItems(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		crafters, err = buildings.GetAllCrafters(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		generators, err = buildings.GetAllGenerators(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		recipes, err = recipeStore.GetAllRecipes(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		powerRecipes, err = recipeStore.GetAllPowerRecipes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	return New(items, crafters, generators, recipes, powerRecipes)
}

// New builds a catalog from entity lists, validating cross references and
// filling in display names on recipes and power recipes. Ownership of the
// given entities passes to the catalog.
func New(
	items []*factory.Item,
	crafters []*factory.Crafter,
	generators []*factory.Generator,
	recipes []*factory.Recipe,
	powerRecipes []*factory.PowerRecipe,
) (*Catalog, error) {
	c := &Catalog{
		items:        items,
		crafters:     crafters,
		generators:   generators,
		recipes:      recipes,
		powerRecipes: powerRecipes,
		byVar:        make(map[string]factory.Entity),
		byProduct:    make(map[string][]*factory.Recipe),
		byIngredient: make(map[string][]*factory.Recipe),
		byCrafter:    make(map[string][]*factory.Recipe),
		byGenerator:  make(map[string][]*factory.PowerRecipe),
	}

	sort.Slice(c.items, func(i, j int) bool { return c.items[i].Var() < c.items[j].Var() })
	sort.Slice(c.crafters, func(i, j int) bool { return c.crafters[i].ID < c.crafters[j].ID })
	sort.Slice(c.generators, func(i, j int) bool { return c.generators[i].ID < c.generators[j].ID })
	sort.Slice(c.recipes, func(i, j int) bool { return c.recipes[i].ID < c.recipes[j].ID })
	sort.Slice(c.powerRecipes, func(i, j int) bool { return c.powerRecipes[i].ID < c.powerRecipes[j].ID })

	for _, it := range c.items {
		if err := c.add(it); err != nil {
			return nil, err
		}
	}
	for _, cr := range c.crafters {
		if err := c.add(cr); err != nil {
			return nil, err
		}
	}
	for _, g := range c.generators {
		if err := c.add(g); err != nil {
			return nil, err
		}
	}

	for _, r := range c.recipes {
		if err := c.add(r); err != nil {
			return nil, err
		}
		crafter, ok := c.byVar[r.Crafter].(*factory.Crafter)
		if !ok {
			return nil, fmt.Errorf("recipe %s: unknown crafter %s", r.Var(), r.Crafter)
		}
		r.CrafterName = crafter.Name
		c.byCrafter[r.Crafter] = append(c.byCrafter[r.Crafter], r)

		for i := range r.Ingredients {
			item, err := c.itemRef(r, r.Ingredients[i].Item)
			if err != nil {
				return nil, err
			}
			r.Ingredients[i].Name = item.Name
			c.byIngredient[item.Var()] = append(c.byIngredient[item.Var()], r)
		}
		for i := range r.Products {
			item, err := c.itemRef(r, r.Products[i].Item)
			if err != nil {
				return nil, err
			}
			r.Products[i].Name = item.Name
			c.byProduct[item.Var()] = append(c.byProduct[item.Var()], r)
		}
	}

	for _, p := range c.powerRecipes {
		if err := c.add(p); err != nil {
			return nil, err
		}
		generator, ok := c.byVar[p.Generator].(*factory.Generator)
		if !ok {
			return nil, fmt.Errorf("power recipe %s: unknown generator %s", p.Var(), p.Generator)
		}
		p.GeneratorName = generator.Name
		fuel, err := c.itemRef(p, p.FuelItem)
		if err != nil {
			return nil, err
		}
		p.FuelName = fuel.Name
		c.byGenerator[p.Generator] = append(c.byGenerator[p.Generator], p)
	}

	return c, nil
}

func (c *Catalog) add(e factory.Entity) error {
	if _, dup := c.byVar[e.Var()]; dup {
		return fmt.Errorf("duplicate catalog entry %s", e.Var())
	}
	c.byVar[e.Var()] = e
	return nil
}

func (c *Catalog) itemRef(owner factory.Entity, itemVar string) (*factory.Item, error) {
	item, ok := c.byVar[itemVar].(*factory.Item)
	if !ok {
		return nil, fmt.Errorf("%s: unknown item %s", owner.Var(), itemVar)
	}
	return item, nil
}

// Items returns all items and resources ordered by var.
func (c *Catalog) Items() []*factory.Item { return c.items }

// Crafters returns all crafters ordered by slug.
func (c *Catalog) Crafters() []*factory.Crafter { return c.crafters }

// Generators returns all generators ordered by slug.
func (c *Catalog) Generators() []*factory.Generator { return c.generators }

// Recipes returns all recipes ordered by slug.
func (c *Catalog) Recipes() []*factory.Recipe { return c.recipes }

// PowerRecipes returns all power recipes ordered by slug.
func (c *Catalog) PowerRecipes() []*factory.PowerRecipe { return c.powerRecipes }

// Entity looks up any entity by var.
func (c *Catalog) Entity(v string) (factory.Entity, bool) {
	e, ok := c.byVar[v]
	return e, ok
}

// Item looks up an item or resource by var.
func (c *Catalog) Item(v string) (*factory.Item, bool) {
	it, ok := c.byVar[v].(*factory.Item)
	return it, ok
}

// Recipe looks up a recipe by var.
func (c *Catalog) Recipe(v string) (*factory.Recipe, bool) {
	r, ok := c.byVar[v].(*factory.Recipe)
	return r, ok
}

// RecipesForProduct returns the recipes that produce the item.
func (c *Catalog) RecipesForProduct(itemVar string) []*factory.Recipe {
	return c.byProduct[itemVar]
}

// RecipesForIngredient returns the recipes that consume the item.
func (c *Catalog) RecipesForIngredient(itemVar string) []*factory.Recipe {
	return c.byIngredient[itemVar]
}

// RecipesForCrafter returns the recipes made in the crafter.
func (c *Catalog) RecipesForCrafter(crafterVar string) []*factory.Recipe {
	return c.byCrafter[crafterVar]
}

// PowerRecipesForGenerator returns the power recipes run on the generator.
func (c *Catalog) PowerRecipesForGenerator(generatorVar string) []*factory.PowerRecipe {
	return c.byGenerator[generatorVar]
}

// Entities returns every entity of the given kinds, grouped by kind in the
// order given.
func (c *Catalog) Entities(kinds ...factory.Kind) []factory.Entity {
	var out []factory.Entity
	for _, kind := range kinds {
		switch kind {
		case factory.KindResource, factory.KindItem:
			for _, it := range c.items {
				if it.Kind() == kind {
					out = append(out, it)
				}
			}
		case factory.KindRecipe:
			for _, r := range c.recipes {
				out = append(out, r)
			}
		case factory.KindPowerRecipe:
			for _, p := range c.powerRecipes {
				out = append(out, p)
			}
		case factory.KindCrafter:
			for _, cr := range c.crafters {
				out = append(out, cr)
			}
		case factory.KindGenerator:
			for _, g := range c.generators {
				out = append(out, g)
			}
		}
	}
	return out
}

// Len returns the number of entities in the catalog.
func (c *Catalog) Len() int {
	return len(c.byVar)
}
