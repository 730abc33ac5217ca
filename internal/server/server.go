// Package server runs the local preview: it builds the site, serves the last
// good output under the base URL and rebuilds when sources change.
package server

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/bryce-seefieldt/portfolio-docs/internal/build"
	"github.com/bryce-seefieldt/portfolio-docs/internal/build/queue"
	"github.com/bryce-seefieldt/portfolio-docs/internal/config"
	"github.com/bryce-seefieldt/portfolio-docs/internal/eventstore"
	derrors "github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
	"github.com/bryce-seefieldt/portfolio-docs/internal/logfields"
	"github.com/bryce-seefieldt/portfolio-docs/internal/metrics"
	"github.com/bryce-seefieldt/portfolio-docs/internal/server/handlers"
	smw "github.com/bryce-seefieldt/portfolio-docs/internal/server/middleware"
	"github.com/bryce-seefieldt/portfolio-docs/internal/version"
)

// DefaultPort is the preview port.
const DefaultPort = 3000

// Options configures the preview server.
type Options struct {
	// Root is the site directory holding docs/, blog/, static/ and site.yaml.
	Root string
	Port int
	// RebuildEvery schedules periodic rebuilds; zero disables them.
	RebuildEvery time.Duration
	// LoadConfig resolves the site configuration. It runs before every rebuild.
	LoadConfig func() (*config.SiteConfig, error)
	// Store receives build history events when set.
	Store eventstore.Store
	// Registry collects metrics; a fresh registry is created when nil.
	Registry *prom.Registry
	Logger   *slog.Logger
}

// published is the output currently being served.
type published struct {
	dir string
	cfg *config.SiteConfig
}

// buildStatus tracks the last rebuild error and whether any build succeeded.
type buildStatus struct {
	mu           sync.RWMutex
	lastError    error
	hasGoodBuild bool
}

func (bs *buildStatus) setError(err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastError = err
}

func (bs *buildStatus) setSuccess() {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastError = nil
	bs.hasGoodBuild = true
}

func (bs *buildStatus) getStatus() (hasError bool, err error, hasGoodBuild bool) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.lastError != nil, bs.lastError, bs.hasGoodBuild
}

// Server is the preview server.
type Server struct {
	opts      Options
	logger    *slog.Logger
	registry  *prom.Registry
	recorder  *metrics.PrometheusRecorder
	queue     *queue.RebuildQueue
	status    buildStatus
	startTime time.Time
	stageDir  string

	errorAdapter *derrors.HTTPErrorAdapter
	monitoring   *handlers.MonitoringHandlers
	mchain       func(http.Handler) http.Handler

	mu      sync.RWMutex
	current *published
	seq     int
}

// New prepares a server. Output is staged in a temporary directory that
// Serve removes on shutdown.
func New(opts Options) (*Server, error) {
	if opts.LoadConfig == nil {
		return nil, derrors.ConfigError("preview server requires a configuration loader").Build()
	}
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve site root: %w", err)
	}
	opts.Root = root
	if opts.Registry == nil {
		opts.Registry = metrics.NewRegistry()
	}
	stageDir, err := os.MkdirTemp("", "portfolio-docs-preview-*")
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "failed to create preview directory").Fatal().Build()
	}

	s := &Server{
		opts:         opts,
		logger:       opts.Logger,
		registry:     opts.Registry,
		recorder:     metrics.NewPrometheusRecorder(opts.Registry),
		startTime:    time.Now(),
		stageDir:     stageDir,
		errorAdapter: derrors.NewHTTPErrorAdapter(opts.Logger),
	}
	s.queue = queue.NewRebuildQueue(s.Rebuild)
	s.queue.SetRecorder(s.recorder)
	s.monitoring = handlers.NewMonitoringHandlers(s)
	s.mchain = smw.Chain(opts.Logger, s.errorAdapter)
	return s, nil
}

// StartTime implements handlers.Runtime.
func (s *Server) StartTime() time.Time { return s.startTime }

// Building implements handlers.Runtime.
func (s *Server) Building() bool { return s.queue.Running() }

// LastBuild implements handlers.Runtime.
func (s *Server) LastBuild() (queue.Status, bool) { return s.queue.Last() }

// HasGoodBuild implements handlers.Runtime.
func (s *Server) HasGoodBuild() bool {
	_, _, good := s.status.getStatus()
	return good
}

func (s *Server) published() *published {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Rebuild builds into a fresh staging directory and publishes it on success.
// A failed rebuild leaves the previous output in place.
func (s *Server) Rebuild(ctx context.Context, trigger string) error {
	cfg, err := s.opts.LoadConfig()
	if err != nil {
		s.status.setError(err)
		s.logger.Warn("Rebuild skipped: configuration invalid", logfields.Trigger(trigger), logfields.Error(err))
		return err
	}

	s.mu.Lock()
	s.seq++
	out := filepath.Join(s.stageDir, "build-"+strconv.Itoa(s.seq))
	s.mu.Unlock()

	opts := []build.Option{
		build.WithOutDir(out),
		build.WithRecorder(s.recorder),
		build.WithLogger(s.logger),
		build.WithVersion(version.Version),
	}
	if s.opts.Store != nil {
		opts = append(opts, build.WithStore(s.opts.Store))
	}
	report, err := build.New(cfg, s.opts.Root, opts...).Rebuild(ctx, trigger)
	if err != nil {
		_ = os.RemoveAll(out)
		s.status.setError(err)
		if s.published() != nil {
			s.logger.Warn("Rebuild failed; serving last good output", logfields.Trigger(trigger), logfields.Error(err))
		}
		return err
	}

	s.mu.Lock()
	prev := s.current
	s.current = &published{dir: out, cfg: cfg}
	s.mu.Unlock()
	s.status.setSuccess()

	if prev != nil {
		if err := os.RemoveAll(prev.dir); err != nil {
			s.logger.Warn("Failed to remove previous output", logfields.Path(prev.dir), logfields.Error(err))
		}
	}
	s.logger.Info("Site published",
		logfields.Trigger(trigger),
		logfields.BuildID(report.BuildID),
		slog.Int("pages", report.Pages))
	return nil
}

// Handler returns the HTTP handler: /healthz, /metrics and the site.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.monitoring.HandleHealthCheck)
	mux.Handle("/metrics", metrics.HTTPHandler(s.registry))
	mux.Handle("/", s.siteHandler())
	return s.mchain(mux)
}

// Serve builds the site, starts watching sources and serves until ctx is
// canceled.
func (s *Server) Serve(ctx context.Context) error {
	defer s.cleanup()

	cfg, err := s.opts.LoadConfig()
	if err != nil {
		return err
	}

	lc := net.ListenConfig{}
	addr := fmt.Sprintf(":%d", s.opts.Port)
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryRuntime, "failed to bind preview port").
			WithContext("port", s.opts.Port).Build()
	}

	watcher, err := newSourceWatcher(s.opts.Root, cfg.OutDir, s.logger, func() {
		s.queue.Enqueue(build.TriggerWatch)
	})
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer func() { _ = watcher.Close() }()

	var scheduler *rebuildScheduler
	if s.opts.RebuildEvery > 0 {
		scheduler, err = newRebuildScheduler(s.opts.RebuildEvery, func() {
			s.queue.Enqueue(build.TriggerSchedule)
		})
		if err != nil {
			_ = ln.Close()
			return err
		}
		scheduler.Start()
	}

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	s.queue.Start(workerCtx)
	s.queue.Enqueue(build.TriggerStartup)

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	s.logger.Info("Preview server listening",
		slog.Int("port", s.opts.Port),
		slog.String("url", fmt.Sprintf("http://localhost:%d%s", s.opts.Port, cfg.BaseURL)))

	go watcher.Run(workerCtx)

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		runErr = derrors.WrapError(err, derrors.CategoryRuntime, "preview server stopped").Build()
	}

	s.logger.Info("Shutting down preview server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	if scheduler != nil {
		if err := scheduler.Stop(); err != nil {
			s.logger.Warn("Scheduler shutdown error", logfields.Error(err))
		}
	}
	stopWorker()
	s.queue.Wait()
	return runErr
}

func (s *Server) cleanup() {
	if err := os.RemoveAll(s.stageDir); err != nil {
		s.logger.Warn("Failed to remove preview directory", logfields.Path(s.stageDir), logfields.Error(err))
	}
}

// Close removes the staging directory. Serve calls it on return; callers
// that only use Handler and Rebuild must call it themselves.
func (s *Server) Close() { s.cleanup() }
