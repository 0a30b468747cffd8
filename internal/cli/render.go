// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"policyportal/internal/markdown"
	"policyportal/internal/policydoc"
)

type renderOptions struct {
	sanitize bool
	out      string
	watch    bool
}

func newRenderCmd() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a policy Markdown file to HTML",
		Long: `Renders a Markdown file with heading anchors, badges and callouts,
exactly as the portal shows it. FILE may be "-" to read standard input.
With --watch the file is re-rendered every time it changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], opts)
		},
	}
	cmd.Flags().BoolVar(&opts.sanitize, "sanitize", false, "Strip unsafe HTML from the output")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write HTML to this file instead of stdout")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Re-render when the file changes")
	return cmd
}

func runRender(cmd *cobra.Command, path string, opts renderOptions) error {
	if opts.watch && path == "-" {
		return errors.New("--watch needs a file, not standard input")
	}

	var annotatorOpts []policydoc.Option
	if opts.sanitize {
		annotatorOpts = append(annotatorOpts, policydoc.WithSanitizer(policydoc.NewSanitizer()))
	}
	annotator := policydoc.NewAnnotator(markdown.ToHTML, annotatorOpts...)

	render := func() error {
		src, err := readSource(cmd, path)
		if err != nil {
			return err
		}
		return writeOutput(cmd, opts.out, []byte(annotator.Render(string(src))))
	}

	if err := render(); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for changes...\n", path)
	return watchFile(cmd.Context(), path, func() {
		if err := render(); err != nil {
			slog.Error("re-render failed", "file", path, "error", err)
			return
		}
		slog.Info("re-rendered", "file", path)
	})
}

// watchFile calls onChange whenever path is written or replaced, until ctx
// is done. The parent directory is watched so that editors which save by
// renaming a temp file over the original are still seen.
func watchFile(ctx context.Context, path string, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if changed(ev, abs) {
				onChange()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", err)
		}
	}
}

// changed reports whether ev means the watched file has new content.
func changed(ev fsnotify.Event, target string) bool {
	if filepath.Clean(ev.Name) != target {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}
