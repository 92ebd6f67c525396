package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rsned/factory-planner/pkg/factory"
)

// BuildingStore handles crafter and generator data access.
type BuildingStore struct {
	db *DB
}

// NewBuildingStore creates a new BuildingStore.
func NewBuildingStore(db *DB) *BuildingStore {
	return &BuildingStore{db: db}
}

// GetAllCrafters retrieves every crafter ordered by slug.
func (s *BuildingStore) GetAllCrafters(ctx context.Context) ([]*factory.Crafter, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slug, name, description, power_mw, area
		FROM crafters ORDER BY slug
	`)
	if err != nil {
		return nil, fmt.Errorf("querying crafters: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var crafters []*factory.Crafter
	for rows.Next() {
		var c factory.Crafter
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.PowerMW, &c.Area); err != nil {
			return nil, fmt.Errorf("scanning crafter: %w", err)
		}
		crafters = append(crafters, &c)
	}

	return crafters, rows.Err()
}

// GetAllGenerators retrieves every generator ordered by slug.
func (s *BuildingStore) GetAllGenerators(ctx context.Context) ([]*factory.Generator, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slug, name, description, power_mw, area
		FROM generators ORDER BY slug
	`)
	if err != nil {
		return nil, fmt.Errorf("querying generators: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var generators []*factory.Generator
	for rows.Next() {
		var g factory.Generator
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.PowerMW, &g.Area); err != nil {
			return nil, fmt.Errorf("scanning generator: %w", err)
		}
		generators = append(generators, &g)
	}

	return generators, rows.Err()
}

// BulkInsertBuildings inserts crafters and generators in one transaction.
func (s *BuildingStore) BulkInsertBuildings(ctx context.Context, crafters []*factory.Crafter, generators []*factory.Generator) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		crafterStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO crafters (slug, name, description, power_mw, area)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing crafter statement: %w", err)
		}
		defer func() { _ = crafterStmt.Close() }()

		generatorStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO generators (slug, name, description, power_mw, area)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing generator statement: %w", err)
		}
		defer func() { _ = generatorStmt.Close() }()

		for _, c := range crafters {
			if _, err := crafterStmt.ExecContext(ctx, c.ID, c.Name, c.Description, c.PowerMW, c.Area); err != nil {
				return fmt.Errorf("inserting crafter %s: %w", c.ID, err)
			}
		}
		for _, g := range generators {
			if _, err := generatorStmt.ExecContext(ctx, g.ID, g.Name, g.Description, g.PowerMW, g.Area); err != nil {
				return fmt.Errorf("inserting generator %s: %w", g.ID, err)
			}
		}

		return nil
	})
}
