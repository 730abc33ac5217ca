package build

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryce-seefieldt/portfolio-docs/internal/config"
	"github.com/bryce-seefieldt/portfolio-docs/internal/content"
	"github.com/bryce-seefieldt/portfolio-docs/internal/diagnostics"
	"github.com/bryce-seefieldt/portfolio-docs/internal/eventstore"
	"github.com/bryce-seefieldt/portfolio-docs/internal/feed"
	"github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
	"github.com/bryce-seefieldt/portfolio-docs/internal/git"
	"github.com/bryce-seefieldt/portfolio-docs/internal/linkverify"
	"github.com/bryce-seefieldt/portfolio-docs/internal/logfields"
	"github.com/bryce-seefieldt/portfolio-docs/internal/markdown"
	"github.com/bryce-seefieldt/portfolio-docs/internal/metrics"
	"github.com/bryce-seefieldt/portfolio-docs/internal/theme"
)

// Builder produces the static site for one configuration.
type Builder struct {
	cfg      *config.SiteConfig
	root     string
	outDir   string
	recorder metrics.Recorder
	store    eventstore.Store
	history  git.UpdateLookup
	now      func() time.Time
	logger   *slog.Logger
	version  string
}

// Option customizes a Builder.
type Option func(*Builder)

// WithRecorder sets the metrics recorder (NoopRecorder by default).
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) {
		if r != nil {
			b.recorder = r
		}
	}
}

// WithStore enables the record stage.
func WithStore(s eventstore.Store) Option {
	return func(b *Builder) { b.store = s }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// WithLogger sets the logger (slog.Default by default).
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithVersion sets the generator version written into pages and history.
func WithVersion(v string) Option {
	return func(b *Builder) { b.version = v }
}

// WithOutDir overrides cfg.OutDir. Relative paths are resolved against the site root.
func WithOutDir(dir string) Option {
	return func(b *Builder) { b.outDir = dir }
}

// WithHistory sets the source of last-update metadata. By default the git
// repository containing the site root is used when the theme shows it.
func WithHistory(h git.UpdateLookup) Option {
	return func(b *Builder) { b.history = h }
}

// New returns a Builder for the site rooted at root.
func New(cfg *config.SiteConfig, root string, opts ...Option) *Builder {
	b := &Builder{
		cfg:      cfg,
		root:     root,
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
		logger:   slog.Default(),
		version:  "dev",
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run executes a build triggered from the command line.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	return b.Rebuild(ctx, TriggerCLI)
}

// Rebuild executes a build and records trigger in the history.
func (b *Builder) Rebuild(ctx context.Context, trigger string) (*Report, error) {
	started := b.now()
	report := &Report{
		BuildID: uuid.NewString(),
		Trigger: trigger,
		Started: started,
	}
	logger := b.logger.With(logfields.BuildID(report.BuildID))
	diag := diagnostics.NewCollector(logger)
	events := b.events(report.BuildID)

	if events != nil {
		err := events.BuildStarted(ctx, eventstore.BuildStarted{
			Version: b.version,
			SiteURL: b.cfg.URL,
			BaseURL: b.cfg.BaseURL,
			Trigger: trigger,
		})
		if err != nil {
			logger.Warn("Failed to record build start", logfields.Error(err))
		}
	}
	logger.Info("Build started", slog.String("trigger", trigger))

	r := &run{Builder: b, ctx: ctx, report: report, diag: diag, logger: logger, routes: map[string]string{}}
	err := r.execute()

	report.Duration = b.now().Sub(started)
	report.Warnings = nil
	for _, w := range diag.Warnings() {
		report.Warnings = append(report.Warnings, w.String())
	}
	report.Outcome = outcome(err, report)

	b.recorder.IncBuildOutcome(report.Outcome)
	b.recorder.ObserveBuildDuration(report.Duration)
	b.recorder.SetPagesGenerated(report.Pages)

	b.record(ctx, events, diag, report, err, logger)

	if err != nil {
		logger.Error("Build failed",
			logfields.Stage(report.FailedStage),
			logfields.DurationMS(float64(report.Duration.Milliseconds())),
			logfields.Error(err))
		return report, err
	}
	logger.Info("Build completed",
		slog.String("outcome", string(report.Outcome)),
		slog.Int("pages", report.Pages),
		slog.Int("warnings", len(report.Warnings)),
		logfields.DurationMS(float64(report.Duration.Milliseconds())))
	return report, nil
}

func outcome(err error, r *Report) metrics.BuildOutcomeLabel {
	switch {
	case err != nil && (stdErrors.Is(err, context.Canceled) || stdErrors.Is(err, context.DeadlineExceeded)):
		return metrics.BuildOutcomeCanceled
	case err != nil:
		return metrics.BuildOutcomeFailed
	case len(r.Warnings) > 0:
		return metrics.BuildOutcomeWarning
	default:
		return metrics.BuildOutcomeSuccess
	}
}

func (b *Builder) events(buildID string) *eventstore.Recorder {
	if b.store == nil {
		return nil
	}
	return eventstore.NewRecorder(b.store, buildID)
}

// record is the last stage. History failures are logged, never fatal.
func (b *Builder) record(ctx context.Context, events *eventstore.Recorder, diag *diagnostics.Collector, r *Report, buildErr error, logger *slog.Logger) {
	if events == nil {
		return
	}
	start := b.now()
	// A canceled build is still recorded.
	ctx = context.WithoutCancel(ctx)

	var err error
	for _, w := range diag.Warnings() {
		err = stdErrors.Join(err, events.WarningReported(ctx, eventstore.WarningReported{
			Category: string(w.Category),
			Rule:     w.Rule,
			Source:   w.Source,
			Target:   w.Target,
			Message:  w.Message,
		}))
	}
	if buildErr != nil {
		err = stdErrors.Join(err, events.BuildFailed(ctx, eventstore.BuildFailed{
			Outcome:    string(r.Outcome),
			Stage:      r.FailedStage,
			Error:      buildErr.Error(),
			DurationMS: r.Duration.Milliseconds(),
		}))
	} else {
		err = stdErrors.Join(err, events.BuildCompleted(ctx, eventstore.BuildCompleted{
			Outcome:       string(r.Outcome),
			DurationMS:    r.Duration.Milliseconds(),
			Pages:         r.Pages,
			Docs:          r.Docs,
			Posts:         r.Posts,
			Warnings:      len(r.Warnings),
			BrokenLinks:   r.BrokenLinks,
			BrokenAnchors: r.BrokenAnchors,
		}))
	}

	b.recorder.ObserveStageDuration(StageRecord, b.now().Sub(start))
	if err != nil {
		b.recorder.IncStageResult(StageRecord, metrics.ResultWarning)
		logger.Warn("Failed to record build history", logfields.Error(err))
		return
	}
	b.recorder.IncStageResult(StageRecord, metrics.ResultSuccess)
}

// run holds the state of one build while its stages execute.
type run struct {
	*Builder
	ctx    context.Context
	report *Report
	diag   *diagnostics.Collector
	logger *slog.Logger

	root   string
	outDir string
	site   *content.Site
	theme  *theme.Theme
	// routes maps each written permalink to the template that produced it.
	routes map[string]string
}

func (r *run) execute() error {
	stages := []struct {
		name string
		fn   func(context.Context) error
	}{
		{StageConfig, r.configure},
		{StageDiscover, r.discover},
		{StageRender, r.render},
		{StageAssemble, r.assemble},
		{StageStatic, r.static},
		{StageFeeds, r.feeds},
		{StageVerify, r.verify},
	}
	for _, s := range stages {
		if err := r.stage(s.name, s.fn); err != nil {
			r.report.FailedStage = s.name
			return err
		}
	}
	return nil
}

func (r *run) stage(name string, fn func(context.Context) error) error {
	if err := r.ctx.Err(); err != nil {
		r.recorder.IncStageResult(name, metrics.ResultCanceled)
		return err
	}
	start := r.now()
	warningsBefore := len(r.diag.Warnings())
	err := fn(r.ctx)
	elapsed := r.now().Sub(start)
	r.recorder.ObserveStageDuration(name, elapsed)

	switch {
	case err != nil && r.ctx.Err() != nil:
		r.recorder.IncStageResult(name, metrics.ResultCanceled)
	case err != nil:
		r.recorder.IncStageResult(name, metrics.ResultFatal)
	case len(r.diag.Warnings()) > warningsBefore:
		r.recorder.IncStageResult(name, metrics.ResultWarning)
	default:
		r.recorder.IncStageResult(name, metrics.ResultSuccess)
	}
	r.logger.Debug("Stage finished", logfields.Stage(name), logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	return err
}

func (r *run) configure(context.Context) error {
	if r.cfg == nil {
		return errors.ConfigError("site configuration is required").Build()
	}
	if err := r.cfg.Validate(); err != nil {
		return err
	}

	root, err := filepath.Abs(r.Builder.root)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve site root").
			Fatal().WithContext("root", r.Builder.root).Build()
	}
	out := r.Builder.outDir
	if out == "" {
		out = r.cfg.OutDir
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(root, out)
	}
	out = filepath.Clean(out)
	if rel, err := filepath.Rel(out, root); err == nil && (rel == "." || !strings.HasPrefix(rel, "..")) {
		return errors.ConfigError("output directory must not contain the site root").
			WithContext("out_dir", out).WithContext("root", root).Build()
	}
	r.root = root
	r.outDir = out
	r.report.OutDir = out

	if err := os.RemoveAll(out); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to clean output directory").
			Fatal().WithContext("path", out).Build()
	}
	if err := os.MkdirAll(out, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
			Fatal().WithContext("path", out).Build()
	}

	t, err := theme.New(r.cfg, theme.WithClock(r.now), theme.WithVersion(r.version))
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to load page templates").Build()
	}
	r.theme = t
	return nil
}

func (r *run) discover(ctx context.Context) error {
	history := r.history
	if history == nil {
		history = r.openHistory()
	}
	site, err := content.Discover(ctx, r.cfg, content.Options{
		Root:        r.root,
		History:     history,
		Diagnostics: r.diag,
	})
	if err != nil {
		return err
	}
	r.site = site
	r.report.Docs = len(site.Docs)
	r.report.Posts = len(site.Posts)
	r.logger.Info("Content discovered", slog.Int("docs", len(site.Docs)), slog.Int("posts", len(site.Posts)))
	return nil
}

func (r *run) openHistory() git.UpdateLookup {
	if !r.cfg.Docs.ShowLastUpdateTime && !r.cfg.Docs.ShowLastUpdateAuthor {
		return git.NoHistory{}
	}
	h, err := git.OpenHistory(r.root)
	if err != nil {
		r.logger.Warn("Last update metadata unavailable", logfields.Path(r.root), logfields.Error(err))
		return git.NoHistory{}
	}
	return h
}

func (r *run) render(ctx context.Context) error {
	renderer := markdown.NewRenderer(markdown.Options{Mermaid: r.cfg.Markdown.Mermaid})
	return content.Render(ctx, r.site, r.root, renderer, r.diag)
}

func (r *run) feeds(context.Context) error {
	written, err := feed.Write(r.outDir, r.cfg, r.site.Posts, r.now())
	if err != nil {
		return err
	}
	r.report.Feeds = written
	return nil
}

func (r *run) verify(ctx context.Context) error {
	lr, err := linkverify.NewVerifier(r.cfg).Verify(ctx, r.outDir)
	if err != nil {
		return fmt.Errorf("verify links: %w", err)
	}
	r.report.addLinks(lr)
	r.recorder.AddLinkFindings("broken_link", len(lr.BrokenLinks))
	r.recorder.AddLinkFindings("broken_anchor", len(lr.BrokenAnchors))
	r.recorder.AddLinkFindings("missing_asset", len(lr.BrokenAssets))
	r.logger.Info("Links verified",
		slog.Int("pages", lr.Pages),
		slog.Int("checked", lr.Checked),
		slog.Int("broken_links", len(lr.BrokenLinks)),
		slog.Int("broken_anchors", len(lr.BrokenAnchors)))
	return lr.Apply(r.diag, r.cfg.OnBrokenLinks, r.cfg.OnBrokenAnchors)
}
