package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/bryce-seefieldt/portfolio-docs/internal/build"
	"github.com/bryce-seefieldt/portfolio-docs/internal/version"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output    string `short:"o" help:"Output directory (default: out_dir from the site configuration)"`
	HistoryDB string `name:"history-db" help:"SQLite database recording build history" default:"${history_db}"`
	NoHistory bool   `name:"no-history" help:"Do not record build history"`

	out io.Writer `kong:"-"`
}

// Run executes the build command.
func (b *BuildCmd) Run(ctx context.Context, _ *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}

	opts := []build.Option{build.WithVersion(version.Version), build.WithLogger(slog.Default())}
	if b.Output != "" {
		opts = append(opts, build.WithOutDir(b.Output))
	}
	if !b.NoHistory {
		store, err := root.openHistory(b.HistoryDB)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		opts = append(opts, build.WithStore(store))
	}

	report, err := build.New(cfg, root.Root, opts...).Run(ctx)
	if report != nil {
		printReport(b.writer(), report)
	}
	return err
}

func (b *BuildCmd) writer() io.Writer {
	if b.out != nil {
		return b.out
	}
	return os.Stdout
}

func printReport(w io.Writer, r *build.Report) {
	if r.FailedStage != "" {
		_, _ = fmt.Fprintf(w, "Build %s failed in %s stage after %s\n", shortID(r.BuildID), r.FailedStage, r.Duration.Round(time.Millisecond))
		return
	}
	_, _ = fmt.Fprintf(w, "Built %d pages (%d docs, %d posts) into %s in %s\n",
		r.Pages, r.Docs, r.Posts, r.OutDir, r.Duration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(w, "Checked %d links: %d broken links, %d broken anchors, %d missing assets\n",
		r.LinksChecked, r.BrokenLinks, r.BrokenAnchors, r.MissingAssets)
	if n := len(r.Warnings); n > 0 {
		_, _ = fmt.Fprintf(w, "%d warning(s):\n", n)
		for _, warning := range r.Warnings {
			_, _ = fmt.Fprintf(w, "  - %s\n", warning)
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
