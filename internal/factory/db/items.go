package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rsned/factory-planner/pkg/factory"
)

// ItemStore handles item data access.
type ItemStore struct {
	db *DB
}

// NewItemStore creates a new ItemStore.
func NewItemStore(db *DB) *ItemStore {
	return &ItemStore{db: db}
}

// GetItem retrieves a single item by slug. Returns nil if not found.
func (s *ItemStore) GetItem(ctx context.Context, slug string) (*factory.Item, error) {
	item := &factory.Item{ID: slug}
	err := s.db.QueryRowContext(ctx, `
		SELECT name, description, stack_size, sink_points, is_resource, weight
		FROM items WHERE slug = ?
	`, slug).Scan(
		&item.Name,
		&item.Description,
		&item.StackSize,
		&item.SinkPoints,
		&item.Resource,
		&item.Weight,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying item: %w", err)
	}
	return item, nil
}

// GetAllItems retrieves every item ordered by slug.
func (s *ItemStore) GetAllItems(ctx context.Context) ([]*factory.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slug, name, description, stack_size, sink_points, is_resource, weight
		FROM items ORDER BY slug
	`)
	if err != nil {
		return nil, fmt.Errorf("querying all items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []*factory.Item
	for rows.Next() {
		var it factory.Item
		if err := rows.Scan(
			&it.ID,
			&it.Name,
			&it.Description,
			&it.StackSize,
			&it.SinkPoints,
			&it.Resource,
			&it.Weight,
		); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, &it)
	}

	return items, rows.Err()
}

// CountItems returns the total number of items.
func (s *ItemStore) CountItems(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return count, nil
}

// BulkInsertItems inserts multiple items in a transaction.
func (s *ItemStore) BulkInsertItems(ctx context.Context, items []*factory.Item) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO items
			(slug, name, description, stack_size, sink_points, is_resource, weight)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing item statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, it := range items {
			_, err := stmt.ExecContext(ctx,
				it.ID, it.Name, it.Description, it.StackSize,
				it.SinkPoints, it.Resource, it.ResourceWeight(),
			)
			if err != nil {
				return fmt.Errorf("inserting item %s: %w", it.ID, err)
			}
		}

		return nil
	})
}
