package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rsned/factory-planner/pkg/factory"
)

// Recipe item roles.
const (
	roleIngredient = "ingredient"
	roleProduct    = "product"
)

// RecipeStore handles recipe and power recipe data access.
type RecipeStore struct {
	db *DB
}

// NewRecipeStore creates a new RecipeStore.
func NewRecipeStore(db *DB) *RecipeStore {
	return &RecipeStore{db: db}
}

// GetAllRecipes retrieves all recipes with their ingredients and products.
// Item references are returned as full vars.
func (s *RecipeStore) GetAllRecipes(ctx context.Context) ([]*factory.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slug, name, alternate, crafter_slug, craft_time_sec
		FROM recipes ORDER BY slug
	`)
	if err != nil {
		return nil, fmt.Errorf("querying all recipes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recipes []*factory.Recipe
	bySlug := make(map[string]*factory.Recipe)
	for rows.Next() {
		var r factory.Recipe
		var crafter string
		if err := rows.Scan(&r.ID, &r.Name, &r.Alternate, &crafter, &r.CraftTimeSec); err != nil {
			return nil, fmt.Errorf("scanning recipe: %w", err)
		}
		r.Crafter = factory.MakeVar(factory.KindCrafter, crafter)
		recipes = append(recipes, &r)
		bySlug[r.ID] = &r
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Load ingredients and products for all recipes in one pass
	if err := s.loadRecipeItems(ctx, bySlug); err != nil {
		return nil, err
	}

	return recipes, nil
}

// loadRecipeItems attaches ingredient and product rates to the given recipes.
func (s *RecipeStore) loadRecipeItems(ctx context.Context, bySlug map[string]*factory.Recipe) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ri.recipe_slug, ri.role, ri.item_slug, i.is_resource, ri.per_minute
		FROM recipe_items ri
		JOIN items i ON i.slug = ri.item_slug
		ORDER BY ri.recipe_slug, ri.role, ri.position
	`)
	if err != nil {
		return fmt.Errorf("querying recipe items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var recipeSlug, role, itemSlug string
		var resource bool
		var rate factory.ItemRate
		if err := rows.Scan(&recipeSlug, &role, &itemSlug, &resource, &rate.PerMinute); err != nil {
			return fmt.Errorf("scanning recipe item: %w", err)
		}
		r, ok := bySlug[recipeSlug]
		if !ok {
			continue
		}
		kind := factory.KindItem
		if resource {
			kind = factory.KindResource
		}
		rate.Item = factory.MakeVar(kind, itemSlug)
		if role == roleIngredient {
			r.Ingredients = append(r.Ingredients, rate)
		} else {
			r.Products = append(r.Products, rate)
		}
	}

	return rows.Err()
}

// GetAllPowerRecipes retrieves all power recipes. The fuel item is returned
// as a full var.
func (s *RecipeStore) GetAllPowerRecipes(ctx context.Context) ([]*factory.PowerRecipe, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pr.slug, pr.name, pr.generator_slug, pr.fuel_item_slug, i.is_resource,
		       pr.fuel_per_minute, pr.power_mw
		FROM power_recipes pr
		JOIN items i ON i.slug = pr.fuel_item_slug
		ORDER BY pr.slug
	`)
	if err != nil {
		return nil, fmt.Errorf("querying power recipes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recipes []*factory.PowerRecipe
	for rows.Next() {
		var p factory.PowerRecipe
		var generator, fuel string
		var resource bool
		if err := rows.Scan(&p.ID, &p.Name, &generator, &fuel, &resource, &p.FuelPerMinute, &p.PowerProduction); err != nil {
			return nil, fmt.Errorf("scanning power recipe: %w", err)
		}
		p.Generator = factory.MakeVar(factory.KindGenerator, generator)
		kind := factory.KindItem
		if resource {
			kind = factory.KindResource
		}
		p.FuelItem = factory.MakeVar(kind, fuel)
		recipes = append(recipes, &p)
	}

	return recipes, rows.Err()
}

// CountRecipes returns the total number of recipes.
func (s *RecipeStore) CountRecipes(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting recipes: %w", err)
	}
	return count, nil
}

// BulkInsertRecipes inserts multiple recipes in a transaction. Crafter and
// item references may be given either as vars or as bare slugs.
func (s *RecipeStore) BulkInsertRecipes(ctx context.Context, recipes []*factory.Recipe) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		// Prepare statements
		recipeStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO recipes
			(slug, name, alternate, crafter_slug, craft_time_sec)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing recipe statement: %w", err)
		}
		defer func() { _ = recipeStmt.Close() }()

		itemStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO recipe_items
			(recipe_slug, role, position, item_slug, per_minute)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing recipe item statement: %w", err)
		}
		defer func() { _ = itemStmt.Close() }()

		for _, r := range recipes {
			_, err := recipeStmt.ExecContext(ctx,
				r.ID, r.Name, r.Alternate, factory.SlugOf(r.Crafter), r.CraftTimeSec,
			)
			if err != nil {
				return fmt.Errorf("inserting recipe %s: %w", r.ID, err)
			}

			for i, in := range r.Ingredients {
				_, err := itemStmt.ExecContext(ctx, r.ID, roleIngredient, i, factory.SlugOf(in.Item), in.PerMinute)
				if err != nil {
					return fmt.Errorf("inserting ingredient for %s: %w", r.ID, err)
				}
			}

			for i, out := range r.Products {
				_, err := itemStmt.ExecContext(ctx, r.ID, roleProduct, i, factory.SlugOf(out.Item), out.PerMinute)
				if err != nil {
					return fmt.Errorf("inserting product for %s: %w", r.ID, err)
				}
			}
		}

		return nil
	})
}

// BulkInsertPowerRecipes inserts multiple power recipes in a transaction.
func (s *RecipeStore) BulkInsertPowerRecipes(ctx context.Context, recipes []*factory.PowerRecipe) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO power_recipes
			(slug, name, generator_slug, fuel_item_slug, fuel_per_minute, power_mw)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing power recipe statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, p := range recipes {
			_, err := stmt.ExecContext(ctx,
				p.ID, p.Name, factory.SlugOf(p.Generator), factory.SlugOf(p.FuelItem),
				p.FuelPerMinute, p.PowerProduction,
			)
			if err != nil {
				return fmt.Errorf("inserting power recipe %s: %w", p.ID, err)
			}
		}

		return nil
	})
}

// ClearCatalog removes all catalog data (for re-import).
func (s *RecipeStore) ClearCatalog(ctx context.Context) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		// Children first so foreign keys hold at every step
		for _, table := range []string{"power_recipes", "recipe_items", "recipes", "crafters", "generators", "items"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}
		return nil
	})
}
