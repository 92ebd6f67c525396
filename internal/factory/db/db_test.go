package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/factory-planner/pkg/factory"
)

func TestOpenMemory(t *testing.T) {
	ctx := context.Background()
	database, err := OpenAndInit(ctx, MemoryPath)
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	store := NewItemStore(database)
	require.NoError(t, store.BulkInsertItems(ctx, []*factory.Item{
		{ID: "iron-ore", Name: "Iron Ore", Resource: true},
	}))

	item, err := store.GetItem(ctx, "iron-ore")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.True(t, item.Resource)
	assert.InDelta(t, 1, item.Weight, 1e-9)

	missing, err := store.GetItem(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSyncMetadata(t *testing.T) {
	ctx := context.Background()
	database, err := OpenAndInit(ctx, filepath.Join(t.TempDir(), "meta.db"))
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	value, err := database.GetSyncMetadata(ctx, "catalog_last_sync")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, database.SetSyncMetadata(ctx, "catalog_last_sync", "a"))
	require.NoError(t, database.SetSyncMetadata(ctx, "catalog_last_sync", "b"))
	value, err = database.GetSyncMetadata(ctx, "catalog_last_sync")
	require.NoError(t, err)
	assert.Equal(t, "b", value)
}

func TestInTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	database, err := OpenAndInit(ctx, filepath.Join(t.TempDir(), "tx.db"))
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	boom := errors.New("boom")
	err = database.InTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO items (slug, name) VALUES ('coal', 'Coal')`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	count, err := NewItemStore(database).CountItems(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRecipeRoundTrip(t *testing.T) {
	ctx := context.Background()
	database, err := OpenAndInit(ctx, filepath.Join(t.TempDir(), "recipes.db"))
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	require.NoError(t, NewItemStore(database).BulkInsertItems(ctx, []*factory.Item{
		{ID: "coal", Name: "Coal", Resource: true, Weight: 2},
		{ID: "steel-ingot", Name: "Steel Ingot"},
	}))
	require.NoError(t, NewBuildingStore(database).BulkInsertBuildings(ctx,
		[]*factory.Crafter{{ID: "foundry", Name: "Foundry", PowerMW: 16}},
		[]*factory.Generator{{ID: "coal-generator", Name: "Coal Generator", PowerMW: 75}},
	))

	store := NewRecipeStore(database)
	require.NoError(t, store.BulkInsertRecipes(ctx, []*factory.Recipe{{
		ID:          "alternate:coke-steel",
		Name:        "Recipe: Alternate: Coke Steel",
		Alternate:   true,
		Crafter:     "crafter:foundry",
		Ingredients: []factory.ItemRate{{Item: "resource:coal", PerMinute: 45}},
		Products:    []factory.ItemRate{{Item: "item:steel-ingot", PerMinute: 30}},
	}}))
	require.NoError(t, store.BulkInsertPowerRecipes(ctx, []*factory.PowerRecipe{{
		ID: "coal-generator:coal", Name: "Power Recipe: Coal (Coal Generator)",
		Generator: "generator:coal-generator", FuelItem: "resource:coal",
		FuelPerMinute: 15, PowerProduction: 75,
	}}))

	recipes, err := store.GetAllRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	r := recipes[0]
	assert.Equal(t, "recipe:alternate:coke-steel", r.Var())
	assert.True(t, r.Alternate)
	assert.Equal(t, "crafter:foundry", r.Crafter)
	assert.Equal(t, []factory.ItemRate{{Item: "resource:coal", PerMinute: 45}}, r.Ingredients)
	assert.Equal(t, []factory.ItemRate{{Item: "item:steel-ingot", PerMinute: 30}}, r.Products)

	power, err := store.GetAllPowerRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, power, 1)
	assert.Equal(t, "generator:coal-generator", power[0].Generator)
	assert.Equal(t, "resource:coal", power[0].FuelItem)

	require.NoError(t, store.ClearCatalog(ctx))
	n, err := store.CountRecipes(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
