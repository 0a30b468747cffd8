// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"policyportal/internal/policydoc"
)

func newTOCCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "toc FILE",
		Short: "Print the table of contents of a policy",
		Long: `Lists the level 2 and 3 headings of a Markdown file with the anchor
ids the portal assigns them. FILE may be "-" to read standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			headings := policydoc.ExtractHeadings(string(src))

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"headings": headings})
			}

			if len(headings) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No headings.")
				return nil
			}
			for _, h := range headings {
				indent := strings.Repeat("  ", h.Level-2)
				fmt.Fprintf(cmd.OutOrStdout(), "%s- %s (#%s)\n", indent, h.Text, h.ID)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print headings as JSON")
	return cmd
}
