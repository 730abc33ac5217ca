package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/bryce-seefieldt/portfolio-docs/internal/server"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Port         int           `short:"p" help:"Port to serve on" default:"3000"`
	RebuildEvery time.Duration `name:"rebuild-every" help:"Also rebuild on this interval (e.g. 10m); 0 disables"`
	HistoryDB    string        `name:"history-db" help:"SQLite database recording build history" default:"${history_db}"`
	NoHistory    bool          `name:"no-history" help:"Do not record build history"`
}

// Run starts the preview server and blocks until ctx is canceled.
func (s *ServeCmd) Run(ctx context.Context, _ *Global, root *CLI) error {
	opts := server.Options{
		Root:         root.Root,
		Port:         s.Port,
		RebuildEvery: s.RebuildEvery,
		LoadConfig:   root.LoadConfig,
		Logger:       slog.Default(),
	}
	if !s.NoHistory {
		store, err := root.openHistory(s.HistoryDB)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		opts.Store = store
	}

	srv, err := server.New(opts)
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}
