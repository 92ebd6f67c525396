// Package sync handles importing catalog documents into the database.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rsned/factory-planner/internal/factory/db"
	"github.com/rsned/factory-planner/pkg/factory"
)

// Metadata keys written by ImportCatalog.
const (
	KeyLastSync     = "catalog_last_sync"
	KeyRecipesCount = "recipes_count"
)

// Syncer handles catalog imports.
type Syncer struct {
	db *db.DB
}

// NewSyncer creates a new Syncer.
func NewSyncer(database *db.DB) *Syncer {
	return &Syncer{db: database}
}

// CatalogImport is the document format accepted by the importer.
type CatalogImport struct {
	Items        []ItemImport        `json:"items" yaml:"items"`
	Crafters     []BuildingImport    `json:"crafters" yaml:"crafters"`
	Generators   []BuildingImport    `json:"generators" yaml:"generators"`
	Recipes      []RecipeImport      `json:"recipes" yaml:"recipes"`
	PowerRecipes []PowerRecipeImport `json:"power_recipes" yaml:"power_recipes"`
}

// ItemImport describes an item or raw resource.
type ItemImport struct {
	Slug        string  `json:"slug" yaml:"slug"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	StackSize   int     `json:"stack_size,omitempty" yaml:"stack_size,omitempty"`
	SinkPoints  int     `json:"sink_points,omitempty" yaml:"sink_points,omitempty"`
	Resource    bool    `json:"resource,omitempty" yaml:"resource,omitempty"`
	Weight      float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// BuildingImport describes a crafter or generator.
type BuildingImport struct {
	Slug        string  `json:"slug" yaml:"slug"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	PowerMW     float64 `json:"power_mw" yaml:"power_mw"`
	Area        float64 `json:"area,omitempty" yaml:"area,omitempty"`
}

// RateImport is a recipe ingredient or product. Either PerMinute or Amount
// (per craft cycle, converted using the recipe craft time) must be set.
type RateImport struct {
	Item      string  `json:"item" yaml:"item"`
	Amount    float64 `json:"amount,omitempty" yaml:"amount,omitempty"`
	PerMinute float64 `json:"per_minute,omitempty" yaml:"per_minute,omitempty"`
}

// RecipeImport describes a crafting recipe.
type RecipeImport struct {
	Slug         string       `json:"slug" yaml:"slug"`
	Name         string       `json:"name" yaml:"name"`
	Alternate    bool         `json:"alternate,omitempty" yaml:"alternate,omitempty"`
	Crafter      string       `json:"crafter" yaml:"crafter"`
	CraftTimeSec float64      `json:"craft_time_sec,omitempty" yaml:"craft_time_sec,omitempty"`
	Ingredients  []RateImport `json:"ingredients" yaml:"ingredients"`
	Products     []RateImport `json:"products" yaml:"products"`
}

// PowerRecipeImport describes burning a fuel in a generator.
type PowerRecipeImport struct {
	Slug          string  `json:"slug,omitempty" yaml:"slug,omitempty"`
	Name          string  `json:"name,omitempty" yaml:"name,omitempty"`
	Generator     string  `json:"generator" yaml:"generator"`
	Fuel          string  `json:"fuel" yaml:"fuel"`
	FuelPerMinute float64 `json:"fuel_per_minute" yaml:"fuel_per_minute"`
	PowerMW       float64 `json:"power_mw,omitempty" yaml:"power_mw,omitempty"`
}

// Stats summarizes an import.
type Stats struct {
	Items        int `json:"items"`
	Crafters     int `json:"crafters"`
	Generators   int `json:"generators"`
	Recipes      int `json:"recipes"`
	PowerRecipes int `json:"power_recipes"`
}

// ReadCatalogFile decodes a catalog document. Files ending in .yaml or .yml
// are decoded as YAML, everything else as JSON.
func ReadCatalogFile(path string) (*CatalogImport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var doc CatalogImport
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
	}
	return &doc, nil
}

// ImportCatalogFromFile replaces the stored catalog with the given document.
func (s *Syncer) ImportCatalogFromFile(ctx context.Context, path string) (*Stats, error) {
	doc, err := ReadCatalogFile(path)
	if err != nil {
		return nil, err
	}
	return s.ImportCatalog(ctx, doc)
}

// ImportCatalog validates doc and replaces the stored catalog with it.
func (s *Syncer) ImportCatalog(ctx context.Context, doc *CatalogImport) (*Stats, error) {
	items := make([]*factory.Item, 0, len(doc.Items))
	itemKinds := make(map[string]factory.Kind, len(doc.Items))
	for _, imp := range doc.Items {
		item := transformItem(imp)
		items = append(items, item)
		itemKinds[item.ID] = item.Kind()
	}

	crafters := make([]*factory.Crafter, 0, len(doc.Crafters))
	crafterSlugs := make(map[string]bool, len(doc.Crafters))
	for _, imp := range doc.Crafters {
		crafters = append(crafters, &factory.Crafter{
			ID: imp.Slug, Name: imp.Name, Description: imp.Description, PowerMW: imp.PowerMW, Area: imp.Area,
		})
		crafterSlugs[imp.Slug] = true
	}

	generators := make([]*factory.Generator, 0, len(doc.Generators))
	generatorsBySlug := make(map[string]*factory.Generator, len(doc.Generators))
	for _, imp := range doc.Generators {
		g := &factory.Generator{
			ID: imp.Slug, Name: imp.Name, Description: imp.Description, PowerMW: imp.PowerMW, Area: imp.Area,
		}
		generators = append(generators, g)
		generatorsBySlug[g.ID] = g
	}

	recipes := make([]*factory.Recipe, 0, len(doc.Recipes))
	for _, imp := range doc.Recipes {
		recipe, err := transformRecipe(imp, itemKinds, crafterSlugs)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, recipe)
	}

	powerRecipes := make([]*factory.PowerRecipe, 0, len(doc.PowerRecipes))
	itemNames := make(map[string]string, len(doc.Items))
	for _, it := range items {
		itemNames[it.ID] = it.Name
	}
	for _, imp := range doc.PowerRecipes {
		pr, err := transformPowerRecipe(imp, itemKinds, itemNames, generatorsBySlug)
		if err != nil {
			return nil, err
		}
		powerRecipes = append(powerRecipes, pr)
	}

	recipeStore := db.NewRecipeStore(s.db)
	if err := recipeStore.ClearCatalog(ctx); err != nil {
		return nil, fmt.Errorf("clearing catalog: %w", err)
	}
	if err := db.NewItemStore(s.db).BulkInsertItems(ctx, items); err != nil {
		return nil, fmt.Errorf("inserting items: %w", err)
	}
	if err := db.NewBuildingStore(s.db).BulkInsertBuildings(ctx, crafters, generators); err != nil {
		return nil, fmt.Errorf("inserting buildings: %w", err)
	}
	if err := recipeStore.BulkInsertRecipes(ctx, recipes); err != nil {
		return nil, fmt.Errorf("inserting recipes: %w", err)
	}
	if err := recipeStore.BulkInsertPowerRecipes(ctx, powerRecipes); err != nil {
		return nil, fmt.Errorf("inserting power recipes: %w", err)
	}

	stats := &Stats{
		Items:        len(items),
		Crafters:     len(crafters),
		Generators:   len(generators),
		Recipes:      len(recipes),
		PowerRecipes: len(powerRecipes),
	}

	// Update sync metadata
	if err := s.db.SetSyncMetadata(ctx, KeyLastSync, time.Now().Format(time.RFC3339)); err != nil {
		return nil, err
	}
	if err := s.db.SetSyncMetadata(ctx, KeyRecipesCount, fmt.Sprintf("%d", stats.Recipes)); err != nil {
		return nil, err
	}

	return stats, nil
}

// LastSync returns when the catalog was last imported. ok is false when
// nothing has been imported yet.
func (s *Syncer) LastSync(ctx context.Context) (last time.Time, ok bool, err error) {
	value, err := s.db.GetSyncMetadata(ctx, KeyLastSync)
	if err != nil || value == "" {
		return time.Time{}, false, err
	}
	last, err = time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parsing last sync %q: %w", value, err)
	}
	return last, true, nil
}

// transformItem converts an ItemImport to a factory.Item.
func transformItem(imp ItemImport) *factory.Item {
	return &factory.Item{
		ID:          factory.SlugOf(imp.Slug),
		Name:        imp.Name,
		Description: imp.Description,
		StackSize:   imp.StackSize,
		SinkPoints:  imp.SinkPoints,
		Resource:    imp.Resource,
		Weight:      imp.Weight,
	}
}

// transformRecipe converts a RecipeImport to a factory.Recipe, normalizing
// names to "Recipe: ..." and alternate slugs to "alternate:...".
func transformRecipe(imp RecipeImport, itemKinds map[string]factory.Kind, crafters map[string]bool) (*factory.Recipe, error) {
	name := strings.TrimSpace(imp.Name)
	name = strings.TrimPrefix(name, "Recipe: ")
	alternate := imp.Alternate
	if rest, ok := strings.CutPrefix(name, "Alternate: "); ok {
		alternate = true
		name = rest
	}

	slug := strings.TrimPrefix(imp.Slug, "recipe:")
	if alternate && !strings.HasPrefix(slug, "alternate:") {
		slug = "alternate:" + slug
	}
	if alternate {
		name = "Alternate: " + name
	}

	crafter := factory.SlugOf(imp.Crafter)
	if !crafters[crafter] {
		return nil, fmt.Errorf("recipe %s: unknown crafter %q", slug, imp.Crafter)
	}

	r := &factory.Recipe{
		ID:           slug,
		Name:         "Recipe: " + name,
		Alternate:    alternate,
		Crafter:      factory.MakeVar(factory.KindCrafter, crafter),
		CraftTimeSec: imp.CraftTimeSec,
	}

	var err error
	if r.Ingredients, err = transformRates(slug, imp.Ingredients, imp.CraftTimeSec, itemKinds); err != nil {
		return nil, err
	}
	if r.Products, err = transformRates(slug, imp.Products, imp.CraftTimeSec, itemKinds); err != nil {
		return nil, err
	}
	if len(r.Products) == 0 {
		return nil, fmt.Errorf("recipe %s: no products", slug)
	}

	return r, nil
}

func transformRates(recipe string, rates []RateImport, craftTimeSec float64, itemKinds map[string]factory.Kind) ([]factory.ItemRate, error) {
	out := make([]factory.ItemRate, 0, len(rates))
	for _, rate := range rates {
		slug := factory.SlugOf(rate.Item)
		kind, ok := itemKinds[slug]
		if !ok {
			return nil, fmt.Errorf("recipe %s: unknown item %q", recipe, rate.Item)
		}

		perMinute := rate.PerMinute
		if perMinute == 0 {
			if craftTimeSec <= 0 {
				return nil, fmt.Errorf("recipe %s: item %q has an amount but the recipe has no craft time", recipe, rate.Item)
			}
			perMinute = rate.Amount * 60 / craftTimeSec
		}
		if perMinute <= 0 {
			return nil, fmt.Errorf("recipe %s: item %q has no rate", recipe, rate.Item)
		}

		out = append(out, factory.ItemRate{Item: factory.MakeVar(kind, slug), PerMinute: perMinute})
	}
	return out, nil
}

// transformPowerRecipe converts a PowerRecipeImport, defaulting the power
// production to the generator's rating.
func transformPowerRecipe(
	imp PowerRecipeImport,
	itemKinds map[string]factory.Kind,
	itemNames map[string]string,
	generators map[string]*factory.Generator,
) (*factory.PowerRecipe, error) {
	generator, ok := generators[factory.SlugOf(imp.Generator)]
	if !ok {
		return nil, fmt.Errorf("power recipe: unknown generator %q", imp.Generator)
	}
	fuel := factory.SlugOf(imp.Fuel)
	kind, ok := itemKinds[fuel]
	if !ok {
		return nil, fmt.Errorf("power recipe: unknown fuel %q", imp.Fuel)
	}
	if imp.FuelPerMinute <= 0 {
		return nil, fmt.Errorf("power recipe %s/%s: fuel_per_minute must be positive", generator.ID, fuel)
	}

	slug := strings.TrimPrefix(imp.Slug, "power-recipe:")
	if slug == "" {
		slug = generator.ID + ":" + fuel
	}
	name := imp.Name
	if name == "" {
		name = fmt.Sprintf("Power Recipe: %s (%s)", itemNames[fuel], generator.Name)
	}
	power := imp.PowerMW
	if power == 0 {
		power = generator.PowerMW
	}

	return &factory.PowerRecipe{
		ID:              slug,
		Name:            name,
		Generator:       generator.Var(),
		FuelItem:        factory.MakeVar(kind, fuel),
		FuelPerMinute:   imp.FuelPerMinute,
		PowerProduction: power,
	}, nil
}
