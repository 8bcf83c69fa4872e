package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Category groups expenses under a named spending bucket.
type Category struct {
	ID          int64
	Name        string
	Description string
}

// CategoryStore manages expense categories.
type CategoryStore struct {
	db *sql.DB
}

// Get returns the category with the given id.
func (s *CategoryStore) Get(ctx context.Context, id int64) (Category, error) {
	var c Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description FROM category WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return Category{}, fmt.Errorf("%w: id %d", ErrCategoryNotFound, id)
	}
	if err != nil {
		return Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

// GetAll returns every category ordered by id.
func (s *CategoryStore) GetAll(ctx context.Context) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description FROM category ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Add creates a category and returns it with its assigned id.
func (s *CategoryStore) Add(ctx context.Context, name, description string) (Category, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO category (name, description) VALUES (?, ?)`, name, description)
	if err != nil {
		return Category{}, fmt.Errorf("add category %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Category{}, fmt.Errorf("add category %q: %w", name, err)
	}
	return Category{ID: id, Name: name, Description: description}, nil
}

// Update changes the name and/or description of an existing category. At
// least one field must be non-nil.
func (s *CategoryStore) Update(ctx context.Context, id int64, name, description *string) (Category, error) {
	if name == nil && description == nil {
		return Category{}, fmt.Errorf("%w: either name or description must be specified", ErrNothingToUpdate)
	}

	c, err := s.Get(ctx, id)
	if err != nil {
		return Category{}, err
	}
	if name != nil {
		c.Name = *name
	}
	if description != nil {
		c.Description = *description
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE category SET name = ?, description = ? WHERE id = ?`,
		c.Name, c.Description, c.ID)
	if err != nil {
		return Category{}, fmt.Errorf("update category %d: %w", id, err)
	}
	return c, nil
}
