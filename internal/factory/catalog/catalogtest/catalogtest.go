// Package catalogtest provides a small catalog fixture for tests.
package catalogtest

import (
	"context"
	_ "embed"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rsned/factory-planner/internal/factory/catalog"
	"github.com/rsned/factory-planner/internal/factory/db"
	"github.com/rsned/factory-planner/internal/factory/sync"
)

//go:embed testdata/catalog.json
var fixtureJSON []byte

// Document returns a fresh copy of the fixture catalog document.
func Document(t testing.TB) *sync.CatalogImport {
	t.Helper()
	var doc sync.CatalogImport
	if err := json.Unmarshal(fixtureJSON, &doc); err != nil {
		t.Fatalf("decoding fixture catalog: %v", err)
	}
	return &doc
}

// Database imports the fixture into a SQLite database in a temp dir.
func Database(t testing.TB) *db.DB {
	t.Helper()
	ctx := context.Background()

	database, err := db.OpenAndInit(ctx, filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("opening fixture database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if _, err := sync.NewSyncer(database).ImportCatalog(ctx, Document(t)); err != nil {
		t.Fatalf("importing fixture catalog: %v", err)
	}
	return database
}

// Catalog returns the fixture loaded through the database.
func Catalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load(context.Background(), Database(t))
	if err != nil {
		t.Fatalf("loading fixture catalog: %v", err)
	}
	return c
}
