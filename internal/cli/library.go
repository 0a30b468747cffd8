// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"policyportal/internal/transfer"
)

func newExportCmd(open Opener) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every policy as JSON",
		Long: `Writes all policies in the portal database as a JSON array of
{"id", "name", "content"} records, the same format the portal downloads.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLibrary(cmd.Context(), open, func(lib Library) error {
				policies, err := lib.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("list policies: %w", err)
				}
				data, err := transfer.Export(policies)
				if err != nil {
					return err
				}
				if err := writeOutput(cmd, out, append(data, '\n')); err != nil {
					return err
				}
				if out != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d policies to %s.\n", len(policies), out)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the export to this file instead of stdout")
	return cmd
}

func newImportCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE...",
		Short: "Import policies from JSON exports or Markdown files",
		Long: `Adds the policies in each file to the General category. JSON files
must be portal exports; .md and .markdown files become one policy each,
named after their frontmatter or first title.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(cmd.Context(), open, func(lib Library) error {
				importer := transfer.NewImporter(lib)
				var total transfer.Result
				for _, path := range args {
					data, err := os.ReadFile(path)
					if err != nil {
						return err
					}
					res, err := importer.ImportFile(cmd.Context(), filepath.Base(path), data)
					if err != nil {
						return fmt.Errorf("import %s: %w", path, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %d added, %d skipped\n", path, res.Added, res.Skipped)
					total.Added += res.Added
					total.Skipped += res.Skipped
				}
				fmt.Fprintln(cmd.OutOrStdout(), total.Message())
				return nil
			})
		},
	}
}

func newSyncCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "sync URL",
		Short: "Merge a remote JSON export into the database",
		Long: `Fetches a JSON export over http(s) and merges it by policy name:
matching policies get the remote content, new names are added to General.
GitHub blob links are fetched from raw.githubusercontent.com.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(cmd.Context(), open, func(lib Library) error {
				syncer := transfer.NewSyncer(lib, nil)
				res, err := syncer.Sync(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("sync failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Sync complete: %d added, %d updated, %d unchanged.\n",
					res.Added, res.Updated, res.Unchanged)
				if res.Skipped > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%d invalid records skipped.\n", res.Skipped)
				}
				return nil
			})
		},
	}
}
