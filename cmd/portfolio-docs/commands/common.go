// Package commands implements the portfolio-docs subcommands.
package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/bryce-seefieldt/portfolio-docs/internal/config"
	"github.com/bryce-seefieldt/portfolio-docs/internal/eventstore"
	"github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
)

// EnvLogLevel overrides the log level (debug, info, warn, error).
const EnvLogLevel = "PORTFOLIO_DOCS_LOG_LEVEL"

// DefaultHistoryDB is the build history database, relative to the site root.
const DefaultHistoryDB = ".portfolio-docs/history.db"

// Global carries state shared by all subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Site configuration overlay (relative to --root)" default:"site.yaml"`
	Root    string           `short:"C" help:"Site root directory" default:"." type:"existingdir"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Build the static site"`
	Serve   ServeCmd   `cmd:"" help:"Preview the site locally, rebuilding on changes"`
	Lint    LintCmd    `cmd:"" help:"Lint markdown sources"`
	Show    ConfigCmd  `cmd:"" name:"config" help:"Print the resolved site configuration"`
	History HistoryCmd `cmd:"" help:"List recent builds"`
}

// AfterApply runs after flag parsing: logging and .env files are set up once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)

	loaded := config.LoadDotEnv(config.DotEnvFiles(c.Root)...)
	for _, f := range loaded {
		logger.Debug("Loaded environment file", "path", f)
	}
	return nil
}

// parseLogLevel maps -v and PORTFOLIO_DOCS_LOG_LEVEL to a slog level. -v wins.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvLogLevel))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoadConfig resolves the site configuration from the overlay file and the environment.
func (c *CLI) LoadConfig() (*config.SiteConfig, error) {
	return config.Load(c.resolve(c.Config), config.OSLookup)
}

// resolve makes p relative to the site root unless it is absolute.
func (c *CLI) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// openHistory opens the build history store, creating its directory.
func (c *CLI) openHistory(p string) (*eventstore.SQLiteStore, error) {
	p = c.resolve(p)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create history directory").
			WithContext("path", filepath.Dir(p)).Build()
	}
	return eventstore.NewSQLiteStore(p)
}
