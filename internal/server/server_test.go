package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"

	"github.com/bryce-seefieldt/portfolio-docs/internal/build"
	"github.com/bryce-seefieldt/portfolio-docs/internal/config"
)

var siteFixture = map[string]string{
	"docs/intro.md":              "---\ntitle: Introduction\n---\n\nSee [more](more.md).\n",
	"docs/more.md":               "# More\n\nBack to [intro](intro.md).\n",
	"blog/authors.yml":           "bryce:\n  name: Bryce Seefieldt\n",
	"blog/2024-05-01-welcome.md": "---\ntitle: Welcome\nauthors: bryce\n---\nIntro.\n\n<!-- truncate -->\n\nMore.\n",
	"static/img/favicon2.png":    "icon",
	"static/img/seven30.png":     "logo",
}

func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		writeFile(t, root, rel, body)
	}
	return root
}

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
}

func newTestServer(t *testing.T, root string, env map[string]string) *Server {
	t.Helper()
	s, err := New(Options{
		Root:   root,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		LoadConfig: func() (*config.SiteConfig, error) {
			return config.Load(filepath.Join(root, config.DefaultConfigFile), config.MapLookup(env))
		},
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestServer_StatusPageBeforeFirstBuild(t *testing.T) {
	s := newTestServer(t, writeSite(t, siteFixture), nil)

	rec := get(t, s.Handler(), "/docs/intro/")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "Building documentation")
	require.False(t, s.HasGoodBuild())
}

func TestServer_ServesPublishedSite(t *testing.T) {
	s := newTestServer(t, writeSite(t, siteFixture), nil)
	require.NoError(t, s.Rebuild(t.Context(), build.TriggerStartup))
	h := s.Handler()

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Easy to Use")

	rec = get(t, h, "/docs/intro/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `href="/docs/more/"`)

	rec = get(t, h, "/docs/intro")
	require.Equal(t, http.StatusMovedPermanently, rec.Code)
	require.Equal(t, "/docs/intro/", rec.Header().Get("Location"))

	rec = get(t, h, "/img/favicon2.png")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "icon", rec.Body.String())

	rec = get(t, h, "/docs/missing/")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Page Not Found")

	rec = get(t, h, "/../../etc/passwd")
	require.NotEqual(t, http.StatusOK, rec.Code)
}

func TestServer_ServesUnderBaseURL(t *testing.T) {
	s := newTestServer(t, writeSite(t, siteFixture), map[string]string{config.EnvBaseURL: "/portfolio/"})
	require.NoError(t, s.Rebuild(t.Context(), build.TriggerStartup))
	h := s.Handler()

	rec := get(t, h, "/")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/portfolio/", rec.Header().Get("Location"))

	require.Equal(t, http.StatusOK, get(t, h, "/portfolio/docs/intro/").Code)
	require.Equal(t, http.StatusNotFound, get(t, h, "/docs/intro/").Code)
}

func TestServer_FailedRebuildKeepsLastGoodOutput(t *testing.T) {
	root := writeSite(t, siteFixture)
	s := newTestServer(t, root, nil)
	require.NoError(t, s.Rebuild(t.Context(), build.TriggerStartup))
	first := s.published().dir

	writeFile(t, root, "docs/intro.md", "# Intro\n\nSee [gone](/docs/gone/).\n")
	require.Error(t, s.Rebuild(t.Context(), build.TriggerWatch))

	require.Equal(t, first, s.published().dir)
	require.DirExists(t, first)
	rec := get(t, s.Handler(), "/docs/intro/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `href="/docs/more/"`)
	hasError, _, good := s.status.getStatus()
	require.True(t, hasError)
	require.True(t, good)

	writeFile(t, root, "docs/intro.md", "# Intro\n\nFixed.\n")
	require.NoError(t, s.Rebuild(t.Context(), build.TriggerWatch))
	require.NotEqual(t, first, s.published().dir)
	require.NoDirExists(t, first, "previous output is removed once replaced")
}

func TestServer_FailedFirstBuildShowsError(t *testing.T) {
	root := writeSite(t, withFile(siteFixture, "docs/intro.md", "See [gone](/docs/gone/).\n"))
	s := newTestServer(t, root, nil)
	require.Error(t, s.Rebuild(t.Context(), build.TriggerStartup))

	rec := get(t, s.Handler(), "/")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "Build Failed")
	require.Contains(t, rec.Body.String(), "broken link")
	require.Contains(t, rec.Body.String(), "/docs/gone/")
}

func TestServer_MonitoringEndpoints(t *testing.T) {
	s := newTestServer(t, writeSite(t, siteFixture), nil)
	require.NoError(t, s.Rebuild(t.Context(), build.TriggerStartup))
	h := s.Handler()

	rec := get(t, h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status"`)

	rec = get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "portfolio_docs_build_outcomes_total")
	require.Contains(t, rec.Body.String(), "portfolio_docs_pages_generated")
}

func TestShouldIgnoreEvent(t *testing.T) {
	for _, p := range []string{"docs/.intro.md.swp", "docs/intro.md~", "docs/#intro.md#", "docs/.DS_Store", "Thumbs.db"} {
		require.True(t, shouldIgnoreEvent(p), p)
	}
	require.False(t, shouldIgnoreEvent("docs/intro.md"))
	require.False(t, shouldIgnoreEvent("static/img/logo.png"))
}

func TestSourceWatcher_IgnoresOutputAndSkippedDirs(t *testing.T) {
	root := writeSite(t, siteFixture)
	sw, err := newSourceWatcher(root, "build", slog.New(slog.NewTextHandler(io.Discard, nil)), func() {})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sw.Close() })

	require.True(t, sw.ignored(filepath.Join(root, "build", "index.html")))
	require.True(t, sw.ignored(filepath.Join(root, "node_modules", "x", "y.js")))
	require.True(t, sw.ignored(filepath.Join(root, ".git", "HEAD")))
	require.True(t, sw.ignored(filepath.Dir(root)))
	require.False(t, sw.ignored(filepath.Join(root, "docs", "intro.md")))
	require.False(t, sw.ignored(filepath.Join(root, "builder", "notes.md")))
}

func TestSourceWatcher_DebouncesBursts(t *testing.T) {
	root := writeSite(t, siteFixture)
	var fired atomic.Int32
	sw, err := newSourceWatcher(root, "build", slog.New(slog.NewTextHandler(io.Discard, nil)), func() { fired.Add(1) })
	require.NoError(t, err)
	t.Cleanup(func() { _ = sw.Close() })
	sw.delay = 20 * time.Millisecond

	for range 5 {
		sw.handleEvent(fsnotify.Event{Name: filepath.Join(root, "docs", "intro.md"), Op: fsnotify.Write})
	}
	sw.handleEvent(fsnotify.Event{Name: filepath.Join(root, "build", "index.html"), Op: fsnotify.Write})

	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(1), fired.Load())
}

func TestNew_RequiresConfigLoader(t *testing.T) {
	_, err := New(Options{Root: t.TempDir()})
	require.Error(t, err)
}

func withFile(files map[string]string, rel, body string) map[string]string {
	out := make(map[string]string, len(files)+1)
	for k, v := range files {
		out[k] = v
	}
	out[rel] = body
	return out
}
