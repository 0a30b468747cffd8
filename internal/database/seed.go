// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// WelcomePolicyName is the name of the policy created by Seed.
const WelcomePolicyName = "Acceptable Use Policy"

// welcomePolicy demonstrates every annotation the portal renders.
const welcomePolicy = `# Acceptable Use Policy

This policy describes how company IT resources may be used.

## Purpose

> [!NOTE] Who this applies to
> Every employee, contractor and guest with access to company systems.

## Rules

### Passwords

**Simple:** use a password manager and never reuse passwords.

**Live Example:** an email asks you to "re-validate" your mailbox password.
Report it, do not click.

**Punishment:** repeated violations lead to a written warning.

> [!WARNING] Shared accounts
> Never share credentials, even with IT staff.

### Devices

> [!TIP] Lock your screen
> Press Win+L or Ctrl+Cmd+Q whenever you step away.

## Questions

> [!INFO]
> Contact the IT service desk.
`

// Seed populates an empty database with a demonstration policy in the
// general category. It does nothing when any policy exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM policies").Scan(&count); err != nil {
		return fmt.Errorf("seed check policies: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	_, err := db.Exec(`
		INSERT INTO policies (name, category_id, content)
		VALUES ($1, 'general', $2)
	`, WelcomePolicyName, welcomePolicy)
	if err != nil {
		return fmt.Errorf("seed insert policy: %w", err)
	}

	slog.Info("database seeded with welcome policy", "name", WelcomePolicyName)
	return nil
}
