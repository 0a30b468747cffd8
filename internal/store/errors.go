// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned by mutations whose target row does not exist.
	// Lookups return nil, nil instead.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique key already exists.
	ErrDuplicate = errors.New("already exists")
	// ErrCategoryInUse is matched by *CategoryInUseError.
	ErrCategoryInUse = errors.New("category in use")
	// ErrProtectedCategory is returned when deleting the general category.
	ErrProtectedCategory = errors.New("category cannot be deleted")
)

// CategoryInUseError reports a refused category deletion.
type CategoryInUseError struct {
	ID       string
	Policies int
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("category %q contains %d policies", e.ID, e.Policies)
}

// Is lets errors.Is match ErrCategoryInUse.
func (e *CategoryInUseError) Is(target error) bool {
	return target == ErrCategoryInUse
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
