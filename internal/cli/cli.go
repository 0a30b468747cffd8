// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cli implements policyctl, the command-line companion of the
// portal. The render and toc commands work on local Markdown files; the
// export, import and sync commands work against the portal database.
package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"policyportal/internal/config"
	"policyportal/internal/database"
	"policyportal/internal/store"
	"policyportal/internal/transfer"
)

// Library is the policy store behind the database commands.
type Library interface {
	transfer.PolicySyncStore
}

// Opener connects to the policy library. The returned func releases it.
type Opener func(ctx context.Context) (Library, func() error, error)

// errNoLibrary is returned by database commands when no Opener was given.
var errNoLibrary = errors.New("policy database not configured")

// New builds the policyctl command tree. open may be nil, in which case
// only the file commands work.
func New(open Opener) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "policyctl",
		Short: "Render and manage portal policies",
		Long: `policyctl renders policy Markdown the way the portal does and
moves policies in and out of the portal database.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(
		newRenderCmd(),
		newTOCCmd(),
		newExportCmd(open),
		newImportCmd(open),
		newSyncCmd(open),
	)
	return root
}

// withLibrary opens the library for the duration of fn.
func withLibrary(ctx context.Context, open Opener, fn func(Library) error) error {
	if open == nil {
		return errNoLibrary
	}
	lib, closeFn, err := open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeFn(); err != nil {
			slog.Warn("close policy database", "error", err)
		}
	}()
	return fn(lib)
}

// OpenDatabase is the Opener used by policyctl: it loads the portal
// configuration, connects to PostgreSQL and applies pending migrations.
func OpenDatabase(ctx context.Context) (Library, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return store.NewPolicyStore(db), db.Close, nil
}

// readSource reads a Markdown file. "-" reads standard input.
func readSource(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return readAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// writeOutput writes data to path, or to the command output when path is
// empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
