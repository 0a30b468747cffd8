// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"policyportal/internal/models"
	"policyportal/internal/slug"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, icon, created_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	if err := scanner.Scan(&c.ID, &c.Name, &c.Icon, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories in creation order, with policy counts.
// Uncategorised policies are counted under the general category.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.icon, c.created_at, COUNT(p.id) AS policy_count
		FROM categories c
		LEFT JOIN policies p
		       ON p.category_id = c.id
		       OR (p.category_id IS NULL AND c.id = 'general')
		GROUP BY c.id
		ORDER BY c.created_at, c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.CreatedAt, &c.PolicyCount); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by its ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id string) (*models.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// Create inserts a category whose ID is derived from name. An empty icon
// becomes models.DefaultCategoryIcon.
func (s *CategoryStore) Create(ctx context.Context, name, icon string) (*models.Category, error) {
	if icon == "" {
		icon = models.DefaultCategoryIcon
	}

	c, err := scanCategory(s.db.QueryRowContext(ctx, `
		INSERT INTO categories (id, name, icon)
		VALUES ($1, $2, $3)
		RETURNING `+categoryColumns,
		slug.CategoryID(name), name, icon,
	))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("create category %q: %w", name, ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// Delete removes an empty category. It returns *CategoryInUseError when
// policies still reference it and ErrProtectedCategory for the general
// category.
func (s *CategoryStore) Delete(ctx context.Context, id string) error {
	if id == models.GeneralCategoryID {
		return fmt.Errorf("delete category %q: %w", id, ErrProtectedCategory)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete category begin: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM policies WHERE category_id = $1`, id,
	).Scan(&count); err != nil {
		return fmt.Errorf("delete category count: %w", err)
	}
	if count > 0 {
		return &CategoryInUseError{ID: id, Policies: count}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete category %q: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete category commit: %w", err)
	}
	return nil
}
