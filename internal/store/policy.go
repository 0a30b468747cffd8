// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"policyportal/internal/models"
)

// PolicyStore manages policies in the database.
type PolicyStore struct {
	db *sql.DB
}

// NewPolicyStore returns a new PolicyStore.
func NewPolicyStore(db *sql.DB) *PolicyStore {
	return &PolicyStore{db: db}
}

const policyColumns = `id, name, category_id, content, created_at, updated_at`

// scanPolicy scans a row into a Policy struct.
func scanPolicy(scanner interface{ Scan(...any) error }) (*models.Policy, error) {
	var p models.Policy
	err := scanner.Scan(&p.ID, &p.Name, &p.CategoryID, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PolicyStore) query(ctx context.Context, q string, args ...any) ([]models.Policy, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan policy: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// List returns all policies, newest first.
func (s *PolicyStore) List(ctx context.Context) ([]models.Policy, error) {
	items, err := s.query(ctx, `SELECT `+policyColumns+` FROM policies ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	return items, nil
}

// ListByCategory returns the policies of one category, newest first.
// Listing the general category includes uncategorised policies.
func (s *PolicyStore) ListByCategory(ctx context.Context, categoryID string) ([]models.Policy, error) {
	items, err := s.query(ctx, `
		SELECT `+policyColumns+` FROM policies
		WHERE category_id = $1 OR ($1 = 'general' AND category_id IS NULL)
		ORDER BY id DESC
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list policies by category: %w", err)
	}
	return items, nil
}

// FindByID retrieves a policy by its ID. Returns nil if not found.
func (s *PolicyStore) FindByID(ctx context.Context, id int64) (*models.Policy, error) {
	p, err := scanPolicy(s.db.QueryRowContext(ctx,
		`SELECT `+policyColumns+` FROM policies WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find policy by id: %w", err)
	}
	return p, nil
}

// Create inserts a new policy and returns it with the generated ID.
func (s *PolicyStore) Create(ctx context.Context, name, content string, categoryID *string) (*models.Policy, error) {
	p, err := scanPolicy(s.db.QueryRowContext(ctx, `
		INSERT INTO policies (name, content, category_id)
		VALUES ($1, $2, $3)
		RETURNING `+policyColumns,
		name, content, categoryID,
	))
	if err != nil {
		return nil, fmt.Errorf("create policy: %w", err)
	}
	return p, nil
}

// Update applies the non-nil fields of patch and returns the full updated
// row. An empty patch returns the current row unchanged.
func (s *PolicyStore) Update(ctx context.Context, id int64, patch models.PolicyPatch) (*models.Policy, error) {
	if patch.IsEmpty() {
		p, err := s.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("update policy %d: %w", id, ErrNotFound)
		}
		return p, nil
	}

	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Content != nil {
		add("content", *patch.Content)
	}
	if patch.CategoryID != nil {
		add("category_id", *patch.CategoryID)
	}
	args = append(args, id)

	q := fmt.Sprintf(`
		UPDATE policies SET %s, updated_at = NOW()
		WHERE id = $%d
		RETURNING %s`, strings.Join(sets, ", "), len(args), policyColumns)

	p, err := scanPolicy(s.db.QueryRowContext(ctx, q, args...))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("update policy %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update policy: %w", err)
	}
	return p, nil
}

// Delete removes a policy by ID.
func (s *PolicyStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM policies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete policy: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete policy %d: %w", id, ErrNotFound)
	}
	return nil
}

