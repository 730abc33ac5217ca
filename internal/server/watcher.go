package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bryce-seefieldt/portfolio-docs/internal/logfields"
)

// debounceDelay groups bursts of file events (editor saves, git checkouts)
// into a single rebuild.
const debounceDelay = 300 * time.Millisecond

// skippedDirs are never watched.
var skippedDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	".cache":       true,
	".docusaurus":  true,
}

// sourceWatcher watches the site tree recursively and calls trigger once
// per burst of relevant changes.
type sourceWatcher struct {
	w      *fsnotify.Watcher
	root   string
	outDir string
	logger *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	trigger func()
	delay   time.Duration
}

func newSourceWatcher(root, outDir string, logger *slog.Logger, trigger func()) (*sourceWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(root, outDir)
	}
	sw := &sourceWatcher{
		w:       w,
		root:    root,
		outDir:  filepath.Clean(outDir),
		logger:  logger,
		trigger: trigger,
		delay:   debounceDelay,
	}
	if err := sw.addDirsRecursive(root); err != nil {
		_ = w.Close()
		return nil, err
	}
	return sw, nil
}

// Run forwards events until ctx is done or the watcher is closed.
func (sw *sourceWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			sw.stopTimer()
			return
		case ev, ok := <-sw.w.Events:
			if !ok {
				return
			}
			sw.handleEvent(ev)
		case err, ok := <-sw.w.Errors:
			if !ok {
				return
			}
			sw.logger.Warn("File watcher error", logfields.Error(err))
		}
	}
}

// Close stops watching.
func (sw *sourceWatcher) Close() error {
	sw.stopTimer()
	return sw.w.Close()
}

func (sw *sourceWatcher) handleEvent(ev fsnotify.Event) {
	if sw.ignored(ev.Name) || shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = sw.addDirsRecursive(ev.Name)
		}
	}
	if ev.Op == fsnotify.Chmod {
		return
	}
	sw.logger.Debug("Source changed", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	sw.schedule()
}

// schedule restarts the debounce timer.
func (sw *sourceWatcher) schedule() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.timer != nil {
		sw.timer.Stop()
	}
	sw.timer = time.AfterFunc(sw.delay, sw.trigger)
}

func (sw *sourceWatcher) stopTimer() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.timer != nil {
		sw.timer.Stop()
		sw.timer = nil
	}
}

func (sw *sourceWatcher) addDirsRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != sw.root && (sw.ignored(path) || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		if err := sw.w.Add(path); err != nil {
			sw.logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// ignored reports whether path lies in the output directory or a skipped directory.
func (sw *sourceWatcher) ignored(path string) bool {
	path = filepath.Clean(path)
	if path == sw.outDir || strings.HasPrefix(path, sw.outDir+string(filepath.Separator)) {
		return true
	}
	rel, err := filepath.Rel(sw.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if skippedDirs[part] {
			return true
		}
	}
	return false
}

// shouldIgnoreEvent reports editor temp files, hidden files and OS metadata.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}
