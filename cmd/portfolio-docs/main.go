package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/bryce-seefieldt/portfolio-docs/cmd/portfolio-docs/commands"
	"github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
	"github.com/bryce-seefieldt/portfolio-docs/internal/lint"
	"github.com/bryce-seefieldt/portfolio-docs/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli commands.CLI
	parser := kong.Parse(&cli,
		kong.Name("portfolio-docs"),
		kong.Description("Build, preview and lint the portfolio documentation site."),
		kong.UsageOnError(),
		kong.Vars{
			"version":     version.String(),
			"history_db":  commands.DefaultHistoryDB,
			"lint_config": lint.DefaultConfigFile,
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	err := parser.Run(&commands.Global{Logger: slog.Default()})
	if err != nil {
		stop()
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
