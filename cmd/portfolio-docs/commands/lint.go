package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
	"github.com/bryce-seefieldt/portfolio-docs/internal/lint"
)

// LintCmd implements the 'lint' command.
type LintCmd struct {
	Paths      []string `arg:"" optional:"" help:"Files or directories to lint (default: the docs and blog directories)"`
	Format     string   `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
	LintConfig string   `name:"lint-config" help:"Lint configuration (relative to --root)" default:"${lint_config}"`
	Quiet      bool     `short:"q" help:"Quiet mode: only show errors, suppress warnings"`
	Color      string   `default:"auto" help:"Colorize text output (auto, always, never)" enum:"auto,always,never"`

	out io.Writer `kong:"-"`
}

// Run lints the sources and fails when any error-level issue is found.
func (l *LintCmd) Run(ctx context.Context, _ *Global, root *CLI) error {
	cfg, err := lint.LoadConfig(root.resolve(l.LintConfig))
	if err != nil {
		return err
	}
	cfg.Quiet = l.Quiet

	linter, err := lint.NewLinter(root.Root, cfg)
	if err != nil {
		return err
	}

	paths := l.Paths
	if len(paths) == 0 {
		paths = defaultLintPaths(root, cfg)
	}

	result := &lint.Result{Issues: []lint.Issue{}}
	for _, p := range paths {
		r, err := linter.LintPath(ctx, p)
		if err != nil {
			return err
		}
		result.Issues = append(result.Issues, r.Issues...)
		result.FilesTotal += r.FilesTotal
	}

	w := l.out
	if w == nil {
		w = os.Stdout
	}
	formatter := lint.NewFormatter(l.Format, resolveColor(l.Color, w))
	if err := formatter.Format(w, result, root.Root); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if result.HasErrors() {
		return errors.ValidationError(fmt.Sprintf("lint found %d error(s)", result.ErrorCount())).
			WithContext("files", result.FilesTotal).Build()
	}
	return nil
}

// defaultLintPaths returns the docs and blog directories that exist, or the root.
func defaultLintPaths(root *CLI, cfg *lint.Config) []string {
	var paths []string
	for _, dir := range []string{cfg.DocsDir, cfg.BlogDir} {
		p := root.resolve(dir)
		if fi, err := os.Stat(p); err == nil && fi.IsDir() {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return []string{root.Root}
	}
	return paths
}

// resolveColor applies --color to the detected terminal state. NO_COLOR disables auto mode.
func resolveColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return lint.IsTTY(w) && os.Getenv("NO_COLOR") == ""
	}
}
