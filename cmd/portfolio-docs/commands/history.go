package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/bryce-seefieldt/portfolio-docs/internal/eventstore"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	HistoryDB string `name:"history-db" help:"SQLite database recording build history" default:"${history_db}"`
	Limit     int    `short:"n" help:"Number of builds to show" default:"10"`
	JSON      bool   `help:"Print JSON instead of a table"`

	out io.Writer `kong:"-"`
}

// Run lists the most recent builds, newest first.
func (h *HistoryCmd) Run(ctx context.Context, _ *Global, root *CLI) error {
	store, err := root.openHistory(h.HistoryDB)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	builds, err := store.RecentBuilds(ctx, h.Limit)
	if err != nil {
		return err
	}

	w := h.out
	if w == nil {
		w = os.Stdout
	}
	if h.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(builds)
	}
	return writeHistoryTable(w, builds)
}

func writeHistoryTable(w io.Writer, builds []eventstore.BuildSummary) error {
	if len(builds) == 0 {
		_, err := fmt.Fprintln(w, "No builds recorded.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "BUILD\tSTATUS\tTRIGGER\tSTARTED\tDURATION\tPAGES\tWARNINGS\tBROKEN\tERROR")
	for _, b := range builds {
		duration := "-"
		if b.CompletedAt != nil {
			duration = b.Duration.Round(time.Millisecond).String()
		}
		status := b.Status
		if b.Outcome != "" && b.Outcome != b.Status {
			status += "/" + b.Outcome
		}
		errText := b.Error
		if b.ErrorStage != "" {
			errText = b.ErrorStage + ": " + errText
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			shortID(b.BuildID), status, b.Trigger, b.StartedAt.Local().Format("2006-01-02 15:04:05"),
			duration, b.Pages, b.Warnings, b.BrokenLinks, errText)
	}
	return tw.Flush()
}
